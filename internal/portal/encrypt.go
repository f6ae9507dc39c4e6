package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// PasswordEncryptor exchanges a plaintext password for the CAS-encrypted form
// via a one-shot call to the provider's encryption endpoint. Stateless; a
// failed exchange is retried only by re-running the whole login flow.
type PasswordEncryptor struct {
	httpc *http.Client
	url   string
}

// Encrypt posts the password and extracts the encrypted form from the
// response. The provider emits single-quoted pseudo-JSON, so quoting is
// normalized before decoding.
func (e *PasswordEncryptor) Encrypt(ctx context.Context, password string) (string, error) {
	form := url.Values{"pwd": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &EncryptError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", &EncryptError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &EncryptError{Err: err}
	}

	var payload struct {
		PasswordEnc string `json:"passwordEnc"`
	}
	normalized := strings.ReplaceAll(string(body), "'", `"`)
	if err := json.Unmarshal([]byte(normalized), &payload); err != nil {
		return "", &EncryptError{Err: fmt.Errorf("malformed response %q: %w", string(body), err)}
	}
	if payload.PasswordEnc == "" {
		return "", &EncryptError{Err: fmt.Errorf("passwordEnc missing from response %q", string(body))}
	}
	return payload.PasswordEnc, nil
}
