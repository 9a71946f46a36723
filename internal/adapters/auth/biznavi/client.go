package biznavi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ipnow2025/medinote/internal/platform/httpclient"
	"github.com/ipnow2025/medinote/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("biznavi client not configured")
	ErrLoginFailed   = errors.New("login failed")
)

const (
	loginPath      = "/api/v1/member/m_access"
	tokenCheckPath = "/api/v1/member/m_access_check"
)

// Client habla con el member API de biznavi. El API recibe form-urlencoded
// y responde JSON con code "00" en éxito.
type Client struct {
	http *httpclient.Client
}

type Options struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	hc, err := httpclient.NewWithBaseURL(opts.BaseURL, opts.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

// memberResponse es el sobre del member API.
type memberResponse struct {
	Code   string `json:"code"`
	Result *struct {
		Idx         json.Number `json:"idx"`
		Name        string      `json:"name"`
		CompanyName string      `json:"company_name"`
		CompanyIdx  json.Number `json:"company_idx"`
		Token       string      `json:"token"`
		Gwtoken     string      `json:"gwtoken"`
	} `json:"result"`
}

// Login valida credenciales contra m_access.
func (c *Client) Login(ctx context.Context, memberID, password string) (auth.Claims, error) {
	if c == nil || c.http == nil {
		return auth.Claims{}, ErrNotConfigured
	}

	form := url.Values{
		"id":              {memberID},
		"password":        {password},
		"device_platform": {"ios"},
		"device_id":       {"mobileapi"},
	}

	var resp memberResponse
	err := c.http.DoForm(ctx, loginPath, map[string]string{
		"X-Requested-With": "XMLHttpRequest",
	}, form, &resp)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("biznavi login: %w", err)
	}

	return c.toClaims(memberID, resp)
}

// VerifyToken valida un token emitido por el member API.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if c == nil || c.http == nil {
		return auth.Claims{}, ErrNotConfigured
	}

	var resp memberResponse
	err := c.http.DoForm(ctx, tokenCheckPath, map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"x-token":          token,
	}, url.Values{}, &resp)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("biznavi token check: %w", err)
	}

	return c.toClaims("", resp)
}

func (c *Client) toClaims(memberID string, resp memberResponse) (auth.Claims, error) {
	if resp.Code != "00" || resp.Result == nil {
		return auth.Claims{}, ErrLoginFailed
	}
	userID := strings.TrimSpace(resp.Result.Idx.String())
	if userID == "" {
		return auth.Claims{}, errors.New("biznavi: member response missing idx")
	}
	return auth.Claims{
		UserID:      userID,
		MemberID:    strings.TrimSpace(memberID),
		Name:        strings.TrimSpace(resp.Result.Name),
		CompanyName: strings.TrimSpace(resp.Result.CompanyName),
	}, nil
}
