package cryptopay

// статусы счёта на стороне провайдера
const (
	StatusWaiting      = "waiting"
	StatusConfirming   = "confirming"
	StatusPaid         = "paid"
	StatusManualAccept = "manual_accept" // оплата принята вручную оператором провайдера
	StatusExpired      = "expired"
	StatusRefunded     = "refunded"
	StatusRefunding    = "refunding"
)

// createInvoiceRequest тело запроса на выставление счёта
type createInvoiceRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Lifetime    int    `json:"lifetime"` // минуты
	OrderID     string `json:"order_id"`
	Description string `json:"description,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type createInvoiceData struct {
	TrackID    string `json:"track_id"`
	PaymentURL string `json:"payment_url"`
	ExpiredAt  int64  `json:"expired_at"` // unix seconds, 0 если провайдер не вернул срок
}

type createInvoiceResponse struct {
	Data    createInvoiceData `json:"data"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
}

type invoiceTx struct {
	TxHash        string `json:"tx_hash"`
	Amount        string `json:"amount"`
	Confirmations int    `json:"confirmations"`
}

type invoiceStatusData struct {
	TrackID  string      `json:"track_id"`
	Status   string      `json:"status"`
	Amount   string      `json:"amount"`
	Currency string      `json:"currency"`
	Txs      []invoiceTx `json:"txs"`
}

type invoiceStatusResponse struct {
	Data    invoiceStatusData `json:"data"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
}

type currenciesResponse struct {
	Data    []string `json:"data"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
}
