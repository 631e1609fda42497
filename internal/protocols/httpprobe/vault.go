/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package httpprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const vaultResponseCap = 256 * 1024

// VaultParams is the `/api/vault/jwtlogin` request: mint a short-lived
// HS256 JWT bearer assertion and present it to Vault's JWT auth
// method.
type VaultParams struct {
	Target     transport.Target
	MountPath  string // e.g. "jwt"; defaults to "jwt"
	Role       string
	Subject    string
	Audience   string
	SigningKey string // HMAC secret shared with Vault's configured JWT validation key
}

func (p VaultParams) mountPath() string {
	if p.MountPath == "" {
		return "jwt"
	}
	return p.MountPath
}

// VaultResult is the flattened auth block of a successful login.
type VaultResult struct {
	ClientToken   string
	Accessor      string
	Policies      []string
	LeaseDuration int
	StatusCode    int
}

// JWTLogin mints a bearer JWT and POSTs it to Vault's JWT auth login
// endpoint over HTTP(S).
func JWTLogin(ctx context.Context, p VaultParams) (*VaultResult, error) {
	if p.Role == "" {
		return nil, ecode.New(ecode.Validation, "vault: role is required")
	}
	token, err := mintBearerJWT(p)
	if err != nil {
		return nil, err
	}

	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*VaultResult, error) {
		hostHeader := fmt.Sprintf("%s:%d", p.Target.Host, p.Target.Port)
		body, err := json.Marshal(map[string]string{"role": p.Role, "jwt": token})
		if err != nil {
			return nil, ecode.Wrap(ecode.Internal, err)
		}
		path := "/v1/auth/" + p.mountPath() + "/login"
		headers := [][2]string{{"Content-Type", "application/json"}}
		req := buildRequest("POST", path, hostHeader, headers, body)
		resp, err := readResponse(tr, req, vaultResponseCap)
		if err != nil {
			return nil, err
		}
		if err := requireSuccess(resp, "vault"); err != nil {
			return nil, err
		}

		var parsed struct {
			Auth struct {
				ClientToken   string   `json:"client_token"`
				Accessor      string   `json:"accessor"`
				Policies      []string `json:"policies"`
				LeaseDuration int      `json:"lease_duration"`
			} `json:"auth"`
		}
		if err := json.Unmarshal(resp.Body, &parsed); err != nil {
			return nil, ecode.Wrap(ecode.Malformed, err)
		}
		return &VaultResult{
			ClientToken:   parsed.Auth.ClientToken,
			Accessor:      parsed.Auth.Accessor,
			Policies:      parsed.Auth.Policies,
			LeaseDuration: parsed.Auth.LeaseDuration,
			StatusCode:    resp.StatusCode,
		}, nil
	})
}

func mintBearerJWT(p VaultParams) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   p.Subject,
		Audience:  jwt.ClaimStrings{p.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(p.SigningKey))
	if err != nil {
		return "", ecode.Wrap(ecode.Internal, err)
	}
	return signed, nil
}
