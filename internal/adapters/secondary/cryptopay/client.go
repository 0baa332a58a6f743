package cryptopay

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	paymentPort "github.com/admin/tg-bots/shop-bot/internal/ports/payment"
	"github.com/shopspring/decimal"
)

const requestTimeout = 30 * time.Second

const (
	invoicePath    = "payment/invoice"
	statusPath     = "payment"
	currenciesPath = "common/currencies"
)

// Client - клиент API крипто-эквайринга.
type Client struct {
	cfg        *Config
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient строит клиента платёжного провайдера.
func NewClient(cfg *Config, log *slog.Logger) *Client {
	transport := &http.Transport{}
	if cfg.ShouldSkipSSL() {
		// песочницы провайдера живут на самоподписанных сертификатах
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Transport: transport, Timeout: requestTimeout},
		log:        log,
	}
}

// endpoint собирает абсолютный URL метода API с учётом версии.
func (c *Client) endpoint(p string) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + path.Join(c.cfg.ApiVersion, p)
}

// doRequest выполняет запрос и возвращает тело ответа, не-200 статус превращается в ошибку.
func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.MerchantKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.MerchantKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call cryptopay: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Debug("cryptopay returned non-200",
			"status_code", resp.StatusCode,
			"url", url,
			"body_preview", clip(string(raw), 200),
		)
		return nil, fmt.Errorf("cryptopay status %d: %s", resp.StatusCode, clip(string(raw), 500))
	}

	return raw, nil
}

// decode разбирает ответ провайдера, при неудаче логируя сырое тело.
func (c *Client) decode(raw []byte, dst any, attrs ...any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Debug("undecodable cryptopay response",
			append(attrs, "error", err, "body_preview", clip(string(raw), 200))...)
		return fmt.Errorf("decode cryptopay response: %w", err)
	}
	return nil
}

// CreateInvoice выставляет счёт на оплату у провайдера.
func (c *Client) CreateInvoice(ctx context.Context, req paymentPort.CreateInvoiceRequest) (*paymentPort.Invoice, error) {
	apiReq := createInvoiceRequest{
		Amount:      req.Amount.String(),
		Currency:    req.Currency,
		Lifetime:    req.LifetimeMinutes,
		OrderID:     req.OrderPublicID.String(),
		Description: req.Description,
		CallbackURL: req.CallbackURL,
	}

	payload, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal invoice: %w", err)
	}

	raw, err := c.doRequest(ctx, http.MethodPost, c.endpoint(invoicePath), payload)
	if err != nil {
		return nil, err
	}

	var apiResp createInvoiceResponse
	if err := c.decode(raw, &apiResp); err != nil {
		return nil, err
	}

	if apiResp.Data.TrackID == "" {
		return nil, fmt.Errorf("cryptopay returned empty track_id: %s", clip(apiResp.Message, 200))
	}

	invoice := &paymentPort.Invoice{
		TrackID: apiResp.Data.TrackID,
		PayLink: apiResp.Data.PaymentURL,
	}
	if apiResp.Data.ExpiredAt > 0 {
		expiredAt := time.Unix(apiResp.Data.ExpiredAt, 0)
		invoice.ExpiredAt = &expiredAt
	}

	c.log.Debug("invoice created",
		"track_id", invoice.TrackID,
		"order_id", req.OrderPublicID,
		"amount", req.Amount,
	)
	return invoice, nil
}

// GetInvoiceStatus запрашивает статус счёта у провайдера.
func (c *Client) GetInvoiceStatus(ctx context.Context, trackID string) (*paymentPort.InvoiceStatus, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, c.endpoint(path.Join(statusPath, trackID)), nil)
	if err != nil {
		return nil, err
	}

	var apiResp invoiceStatusResponse
	if err := c.decode(raw, &apiResp, "track_id", trackID); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(apiResp.Data.Amount)
	if err != nil {
		// Провайдер может не возвращать сумму для просроченных счетов
		amount = decimal.Zero
	}

	status := &paymentPort.InvoiceStatus{
		TrackID:  apiResp.Data.TrackID,
		Status:   apiResp.Data.Status,
		Amount:   amount,
		Currency: apiResp.Data.Currency,
	}

	for _, tx := range apiResp.Data.Txs {
		txAmount, err := decimal.NewFromString(tx.Amount)
		if err != nil {
			txAmount = decimal.Zero
		}
		status.Transactions = append(status.Transactions, paymentPort.InvoiceTransaction{
			Hash:          tx.TxHash,
			Amount:        txAmount,
			Confirmations: tx.Confirmations,
		})
	}

	return status, nil
}

// AcceptedCurrencies список валют, которые принимает провайдер.
func (c *Client) AcceptedCurrencies(ctx context.Context) ([]string, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, c.endpoint(currenciesPath), nil)
	if err != nil {
		return nil, err
	}

	var apiResp currenciesResponse
	if err := c.decode(raw, &apiResp); err != nil {
		return nil, err
	}

	return apiResp.Data, nil
}

// clip укорачивает тело ответа для логов и текстов ошибок.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
