package purchase

// PurchaseRequest is a wallet-funded airtime or data purchase
type PurchaseRequest struct {
	Kind      string `json:"kind" validate:"required,purchase_kind"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	PayIDCode string `json:"payid_code" validate:"required,min=6,max=32"`
	Network   string `json:"network" validate:"required,min=2,max=20"`
	Phone     string `json:"phone" validate:"required,min=7,max=15"`
	PlanCode  string `json:"plan_code" validate:"omitempty,max=40"`
}

// ActivationRequest stakes a PAY-ID code pending manual settlement
type ActivationRequest struct {
	Code        string `json:"code" validate:"required,min=6,max=32"`
	EvidenceKey string `json:"evidence_key" validate:"required,max=120"`
}

// UpgradeRequest asks for a tier upgrade pending manual settlement
type UpgradeRequest struct {
	LevelKey    string `json:"level_key" validate:"required,min=2,max=40"`
	EvidenceKey string `json:"evidence_key" validate:"required,max=120"`
}
