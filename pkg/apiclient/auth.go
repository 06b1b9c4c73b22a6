package apiclient

import (
	"context"

	"gstdesk/pkg/domain"
)

// LoginResponse carries the bearer token issued on successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Login exchanges credentials for an access token. The caller feeds the
// token into the session manager; this client never stores it.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, c.jsonRequest(ctx, "POST", "/api/v1/auth/login", body), &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, email, password, fullName string) (domain.User, error) {
	body := map[string]string{"email": email, "password": password, "full_name": fullName}
	var user domain.User
	if err := c.do(ctx, c.jsonRequest(ctx, "POST", "/api/v1/auth/signup", body), &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ListBusinesses returns the businesses owned by the current user.
func (c *Client) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	var out []domain.Business
	if err := c.do(ctx, c.jsonRequest(ctx, "GET", "/api/v1/businesses", nil), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBusinessRequest holds the fields for registering a business.
type CreateBusinessRequest struct {
	Name         string `json:"name"`
	GSTIN        string `json:"gstin,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
	Address      string `json:"address,omitempty"`
}

// CreateBusiness registers a business for the current user.
func (c *Client) CreateBusiness(ctx context.Context, req CreateBusinessRequest) (domain.Business, error) {
	var out domain.Business
	if err := c.do(ctx, c.jsonRequest(ctx, "POST", "/api/v1/businesses", req), &out); err != nil {
		return domain.Business{}, err
	}
	return out, nil
}

// GetBusiness fetches one business by id.
func (c *Client) GetBusiness(ctx context.Context, id string) (domain.Business, error) {
	var out domain.Business
	if err := c.do(ctx, c.jsonRequest(ctx, "GET", "/api/v1/businesses/"+id, nil), &out); err != nil {
		return domain.Business{}, err
	}
	return out, nil
}
