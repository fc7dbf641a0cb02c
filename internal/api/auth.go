package api

import "context"

// loginRequest is the credential payload for the login endpoint.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult carries the token and identity returned on login.
type LoginResult struct {
	ID          string `json:"id"`
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Role        string `json:"role"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	body := loginRequest{Username: username, Password: password}
	if err := c.Post(ctx, "/api/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
