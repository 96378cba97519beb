package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"marketplace-admin/internal/repository"
	"marketplace-admin/internal/token"
)

// ErrSessionExpired reports that the stored credentials could not be renewed
// and have been cleared.
var ErrSessionExpired = errors.New("session expired")

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (token.Pair, error)
}

type replayKey struct{}

func withReplay(ctx context.Context) context.Context {
	return context.WithValue(ctx, replayKey{}, true)
}

func isReplay(ctx context.Context) bool {
	v, _ := ctx.Value(replayKey{}).(bool)
	return v
}

// Transport attaches the stored access token to every request and recovers
// from a 401 by refreshing the token pair once and replaying the request.
//
// Concurrent requests that hit a 401 share one refresh: the first starts it,
// the others wait for its outcome and replay with the renewed token. A replay
// that is rejected again is returned to the caller untouched.
type Transport struct {
	Base      http.RoundTripper
	Sessions  repository.SessionRepository
	Refresher Refresher
	// RefreshTimeout bounds the refresh call, which runs detached from the
	// cancellation of whichever request started it.
	RefreshTimeout time.Duration
	// OnSessionExpired runs after credentials were cleared because they
	// could not be renewed.
	OnSessionExpired func()
	Logger           *logrus.Logger

	group singleflight.Group
}

const refreshKey = "refresh"

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out, err := replayable(req)
	if err != nil {
		return nil, err
	}

	session, err := t.Sessions.Load(out.Context())
	if err != nil {
		closeBody(out)
		return nil, fmt.Errorf("load session: %w", err)
	}
	sent := session.AccessToken
	if sent != "" {
		out.Header.Set("Authorization", "Bearer "+sent)
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || isReplay(out.Context()) {
		return resp, err
	}

	return t.recoverUnauthorized(out, resp, sent)
}

func (t *Transport) recoverUnauthorized(req *http.Request, resp *http.Response, sent string) (*http.Response, error) {
	original, err := bufferResponse(resp)
	if err != nil {
		return nil, err
	}

	ctx := req.Context()
	log := t.logger().WithFields(logrus.Fields{
		"method": req.Method,
		"path":   req.URL.Path,
	})

	current, err := t.Sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if current.AccessToken != "" && current.AccessToken != sent {
		// rotated while this request was in flight
		log.Debug("access token rotated, replaying")
		return t.replay(req)
	}

	_, err, shared := t.group.Do(refreshKey, func() (any, error) {
		return nil, t.refresh(ctx, sent)
	})
	if err != nil {
		log.WithError(err).Debug("refresh failed, returning original response")
		return original, nil
	}
	log.WithField("shared", shared).Debug("replaying after refresh")
	return t.replay(req)
}

func (t *Transport) refresh(ctx context.Context, sent string) error {
	ctx = context.WithoutCancel(ctx)
	if t.RefreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.RefreshTimeout)
		defer cancel()
	}

	session, err := t.Sessions.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session.AccessToken != "" && session.AccessToken != sent {
		return nil
	}
	if sent != "" && session.AccessToken == "" {
		// cleared by a refresh that already failed
		return ErrSessionExpired
	}
	if session.RefreshToken == "" {
		t.expire(ctx, errors.New("no refresh token"))
		return ErrSessionExpired
	}

	pair, err := t.Refresher.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.expire(ctx, err)
		return fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	if err := t.Sessions.SetTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("persist refreshed tokens: %w", err)
	}
	t.logger().Info("session refreshed")
	return nil
}

func (t *Transport) expire(ctx context.Context, cause error) {
	if err := t.Sessions.Clear(ctx); err != nil {
		t.logger().WithError(err).Error("clear session")
	}
	t.logger().WithError(cause).Warn("session expired, credentials cleared")
	if t.OnSessionExpired != nil {
		t.OnSessionExpired()
	}
}

func (t *Transport) replay(req *http.Request) (*http.Response, error) {
	again := req.Clone(withReplay(req.Context()))
	again.Header.Del("Authorization")
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		again.Body = body
	}
	return t.RoundTrip(again)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) logger() *logrus.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return logrus.StandardLogger()
}

// replayable clones req so it can be sent more than once, buffering a body
// that cannot be rewound.
func replayable(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return out, nil
	}
	buf, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}
	out.Body = io.NopCloser(bytes.NewReader(buf))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}
	out.ContentLength = int64(len(buf))
	return out, nil
}

func bufferResponse(resp *http.Response) (*http.Response, error) {
	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %d response: %w", resp.StatusCode, err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(buf))
	return resp, nil
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}
