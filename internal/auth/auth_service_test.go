package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fitreport/internal/database"
	"fitreport/internal/datastore"
)

func newTestService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	_, err = database.SeedPositions(context.Background(), db)
	require.NoError(t, err)

	svc := NewAuthService(datastore.New(db))
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, db
}

func TestLogin_Success(t *testing.T) {
	svc, db := newTestService(t)
	require.NoError(t, db.Create(&database.User{UserID: "park03", Name: "박", Password: "pw1234", Status: "active"}).Error)

	res, err := svc.Login(context.Background(), "park03", "pw1234")
	require.NoError(t, err)

	claims, err := DecodeToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "park03", claims.UserID)
	assert.Equal(t, res.User.ID, claims.ID)
	assert.EqualValues(t, 1700000000000, claims.Timestamp)
}

func TestLogin_Failures(t *testing.T) {
	svc, db := newTestService(t)
	require.NoError(t, db.Create(&database.User{UserID: "park03", Name: "박", Password: "pw1234", Status: "active"}).Error)
	require.NoError(t, db.Create(&database.User{UserID: "choi04", Name: "최", Password: "pw1234", Status: "inactive"}).Error)

	cases := []struct {
		name     string
		userID   string
		password string
		want     error
	}{
		{"missing fields", "", "", ErrMissingCredentials},
		{"unknown user", "ghost9", "pw1234", ErrInvalidCredentials},
		{"wrong password", "park03", "nope", ErrInvalidCredentials},
		{"inactive", "choi04", "pw1234", ErrInactiveAccount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.Login(context.Background(), tc.userID, tc.password)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, res)
		})
	}
}

func TestToken_RoundTrip(t *testing.T) {
	in := TokenClaims{ID: 7, UserID: "kim01", Timestamp: 1710000000123}
	token, err := EncodeToken(in)
	require.NoError(t, err)

	out, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, int64(1710000000123), out.IssuedAt().UnixMilli())
}

func TestDecodeToken_Malformed(t *testing.T) {
	for _, raw := range []string{"", "%%%", "bm90IGpzb24=", "e30="} {
		_, err := DecodeToken(raw)
		assert.ErrorIs(t, err, ErrMalformedToken, raw)
	}
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	_, ok := SessionFromContext(ctx)
	assert.False(t, ok)

	s := NewSession(TokenClaims{ID: 1, UserID: "kim01", Timestamp: 1000})
	got, ok := SessionFromContext(WithSession(ctx, s))
	require.True(t, ok)
	assert.Equal(t, "kim01", got.UserID)
}
