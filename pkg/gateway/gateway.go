package gateway

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResultCodeApproved is the provider's positive result code, both in the
// synchronous initiation reply and in the asynchronous callback.
const ResultCodeApproved = "00"

// Config holds the merchant credentials and endpoint for the payment
// provider. All fields are required.
type Config struct {
	MerchantID string
	SecretKey  string
	Endpoint   string
}

// Card carries the card data forwarded to the provider. Expiry is MMYY.
type Card struct {
	Pan    string
	Expiry string
	CVV    string
	Holder string
}

// Error is a gateway failure: signature build, transport, or a provider
// decline. Message carries the provider's own text when one was given.
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway error (code %s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway error: %s", e.Message)
}

// paymentRequest is the provider's legacy XML envelope. Amount appears twice
// (transaction and total) because the provider's contract requires both even
// though they are always equal here.
type paymentRequest struct {
	XMLName    xml.Name `xml:"PaymentRequest"`
	MerchantID string   `xml:"MerchantID"`
	Amount     string   `xml:"Amount"`
	Total      string   `xml:"Total"`
	Reference  string   `xml:"MerchantRef"`
	SuccessURL string   `xml:"SuccessURL"`
	FailURL    string   `xml:"FailURL"`
	Pan        string   `xml:"Card>Pan"`
	Expiry     string   `xml:"Card>Expiry"`
	CVV        string   `xml:"Card>CVV"`
	Holder     string   `xml:"Card>Holder"`
	Signature  string   `xml:"Signature"`
}

type paymentResponse struct {
	XMLName       xml.Name `xml:"PaymentResponse"`
	ResultCode    string   `xml:"ResultCode"`
	ResultMessage string   `xml:"ResultMessage"`
	ChallengeURL  string   `xml:"ChallengeURL"`
}

// Client talks to the external payment provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new gateway client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.MerchantID == "" || cfg.SecretKey == "" || cfg.Endpoint == "" {
		return nil, fmt.Errorf("gateway config incomplete: merchant id, secret key and endpoint are all required")
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// sign computes the integrity signature over the canonical string the
// provider verifies: merchant id, the amount twice, the merchant reference,
// both callback URLs and the shared secret, SHA-1 digested and base64
// encoded.
func (c *Client) sign(amount, reference, successURL, failURL string) string {
	canonical := c.cfg.MerchantID + amount + amount + reference + successURL + failURL + c.cfg.SecretKey
	digest := sha1.Sum([]byte(canonical))
	return base64.StdEncoding.EncodeToString(digest[:])
}

// Initiate starts a payment: it sends the signed envelope and returns the
// challenge URL the buyer's browser must be redirected to. Every failure
// path, transport included, comes back as *Error; there is no retry and no
// fabricated success.
func (c *Client) Initiate(amount float64, merchantRef string, card Card, successURL, failURL string) (string, error) {
	amountStr := fmt.Sprintf("%.2f", amount)

	req := paymentRequest{
		MerchantID: c.cfg.MerchantID,
		Amount:     amountStr,
		Total:      amountStr,
		Reference:  merchantRef,
		SuccessURL: successURL,
		FailURL:    failURL,
		Pan:        card.Pan,
		Expiry:     card.Expiry,
		CVV:        card.CVV,
		Holder:     card.Holder,
		Signature:  c.sign(amountStr, merchantRef, successURL, failURL),
	}

	body, err := xml.Marshal(req)
	if err != nil {
		return "", &Error{Message: fmt.Sprintf("failed to build payment envelope: %v", err)}
	}

	resp, err := c.httpClient.Post(c.cfg.Endpoint, "text/xml", bytes.NewReader(append([]byte(xml.Header), body...)))
	if err != nil {
		return "", &Error{Message: fmt.Sprintf("gateway unreachable: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Message: fmt.Sprintf("failed to read gateway response: %v", err)}
	}

	var parsed paymentResponse
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return "", &Error{Message: fmt.Sprintf("unparseable gateway response: %v", err)}
	}

	if parsed.ResultCode != ResultCodeApproved || parsed.ChallengeURL == "" {
		msg := parsed.ResultMessage
		if msg == "" {
			msg = "payment could not be started"
		}
		return "", &Error{Message: msg, Code: parsed.ResultCode}
	}

	return parsed.ChallengeURL, nil
}

// CallbackPayload is the provider's asynchronous result, delivered by
// redirect or server notification. MerchantRef carries the payment session
// id the initiation embedded.
type CallbackPayload struct {
	ResultCode    string `json:"result_code" form:"ResultCode" query:"ResultCode"`
	MerchantRef   string `json:"merchant_ref" form:"MerchantRef" query:"MerchantRef"`
	ResultMessage string `json:"result_message" form:"ResultMessage" query:"ResultMessage"`
}

// Approved reports whether the callback signals a captured payment.
func (p CallbackPayload) Approved() bool {
	return p.ResultCode == ResultCodeApproved
}
