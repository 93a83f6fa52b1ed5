package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// AccountResolver returns the account that owns submitted jobs.
type AccountResolver interface {
	AccountID(ctx context.Context) (string, error)
}

// STSAPI is the subset of the STS client used to identify the caller.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// CallerAccount resolves the account through STS and caches the first success.
type CallerAccount struct {
	client STSAPI

	mu      sync.Mutex
	account string
}

// NewCallerAccount builds an AccountResolver over STS.
func NewCallerAccount(client STSAPI) *CallerAccount {
	return &CallerAccount{client: client}
}

// AccountID returns the caller's account ID.
func (a *CallerAccount) AccountID(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.account != "" {
		return a.account, nil
	}
	out, err := a.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("get caller identity: %w", err)
	}
	account := strings.TrimSpace(aws.ToString(out.Account))
	if account == "" {
		return "", errors.New("caller identity carried no account")
	}
	a.account = account
	return account, nil
}

// ProfileArn builds the data automation profile ARN for region and account.
func ProfileArn(region, account, profile string) string {
	return fmt.Sprintf("arn:aws:bedrock:%s:%s:data-automation-profile/%s", region, account, profile)
}
