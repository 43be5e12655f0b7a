package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	sessionrepo "storefront/internal/repository/session"
)

func TestIssueAndLookup(t *testing.T) {
	ctx := context.Background()
	svc := New(time.Hour)

	sess, err := svc.Issue(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(sess.DeviceID)
	require.NoError(t, err)

	id, err := svc.Lookup(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.DeviceID, id)

	_, err = svc.Lookup(ctx, "bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Lookup(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotateRetiresOldToken(t *testing.T) {
	ctx := context.Background()
	svc := New(time.Hour)
	first, err := svc.Issue(ctx)
	require.NoError(t, err)

	next, err := svc.Rotate(ctx, first.Token)
	require.NoError(t, err)
	assert.NotEqual(t, first.DeviceID, next.DeviceID)

	_, err = svc.Lookup(ctx, first.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// rotating an unknown token still hands out a session
	_, err = svc.Rotate(ctx, "gone")
	require.NoError(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	ctx := context.Background()
	svc := New(time.Minute)
	sess, err := svc.Issue(ctx)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.Lookup(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type brokenStore struct{}

func (brokenStore) Create(context.Context, sessionrepo.Session) error { return errors.New("down") }
func (brokenStore) Get(context.Context, string) (*sessionrepo.Session, error) {
	return nil, errors.New("down")
}
func (brokenStore) Delete(context.Context, string) error { return errors.New("down") }

func TestStoreFailuresAreUnavailable(t *testing.T) {
	ctx := context.Background()
	svc := New(time.Hour, WithStore(brokenStore{}))

	_, err := svc.Issue(ctx)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	_, err = svc.Lookup(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Rotate(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
