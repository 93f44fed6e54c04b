package preferences

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/jerseyx-backend/internal/logging"
	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("storage off")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("storage off") }
func (failingStore) Remove(context.Context, string) error      { return errors.New("storage off") }

func TestTheme_DefaultToggleAndRestore(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()

	p := NewStore(ctx, mem, logging.Discard())
	assert.Equal(t, ThemeLight, p.Theme())
	assert.Equal(t, ThemeDark, p.ToggleTheme(ctx))

	raw, err := mem.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", raw)

	assert.Equal(t, ThemeDark, NewStore(ctx, mem, logging.Discard()).Theme())
}

func TestSetTheme_RejectsUnknown(t *testing.T) {
	p := NewStore(context.Background(), storage.NewMemory(), logging.Discard())
	assert.True(t, errors.Is(p.SetTheme(context.Background(), "sepia"), ErrInvalidTheme))
	assert.Equal(t, ThemeLight, p.Theme())
}

func TestStore_IgnoresCorruptTheme(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, "theme", "neon"))
	assert.Equal(t, ThemeLight, NewStore(ctx, mem, logging.Discard()).Theme())
}

func TestDismiss(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	p := NewStore(ctx, mem, logging.Discard())

	seen, err := p.Dismissed(ctx, "promo_banner")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, p.Dismiss(ctx, "promo_banner"))
	_, err = mem.Get(ctx, "jerseyx_dismissed_promo_banner")
	require.NoError(t, err)

	seen, err = NewStore(ctx, mem, logging.Discard()).Dismissed(ctx, "promo_banner")
	require.NoError(t, err)
	assert.True(t, seen)

	assert.True(t, errors.Is(p.Dismiss(ctx, "Bad Flag!"), ErrInvalidFlag))
}

func TestStore_SurvivesStorageFailure(t *testing.T) {
	ctx := context.Background()
	p := NewStore(ctx, failingStore{}, logging.Discard())

	require.NoError(t, p.SetTheme(ctx, ThemeDark))
	assert.Equal(t, ThemeDark, p.Theme())
	require.NoError(t, p.Dismiss(ctx, "cookies"))
	seen, err := p.Dismissed(ctx, "cookies")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestHandler_Theme(t *testing.T) {
	p := NewStore(context.Background(), storage.NewMemory(), logging.Discard())
	r := chi.NewRouter()
	NewHandler(func(*http.Request) (*Store, bool) { return p, true }).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/preferences/theme", strings.NewReader(`{"theme":"dark"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"dark"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/preferences/theme/toggle", nil))
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/preferences/dismissals/welcome", nil))
	assert.JSONEq(t, `{"flag":"welcome","dismissed":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/preferences/theme", strings.NewReader(`{"theme":"blue"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_NoSession(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(func(*http.Request) (*Store, bool) { return nil, false }).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/preferences/theme", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
