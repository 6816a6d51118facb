package shell

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorgomez09/healthflow/internal/api"
	"github.com/victorgomez09/healthflow/internal/auth/database"
	authmodels "github.com/victorgomez09/healthflow/internal/auth/models"
	"github.com/victorgomez09/healthflow/internal/auth/session"
	"github.com/victorgomez09/healthflow/internal/config"
	"github.com/victorgomez09/healthflow/internal/hooks"
	"github.com/victorgomez09/healthflow/internal/mockapi"
	"github.com/victorgomez09/healthflow/internal/router"
	"github.com/victorgomez09/healthflow/internal/view"
)

const origin = "http://localhost:3000"

type stack struct {
	shell  *Shell
	client *api.Client
	store  *database.MemoryStore
	views  *viewLog
}

type viewLog struct {
	mu    sync.Mutex
	views []view.View
}

func (l *viewLog) add(v view.View) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.views = append(l.views, v)
}

func (l *viewLog) all() []view.View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]view.View(nil), l.views...)
}

func newMockServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := mockapi.New(mockapi.Options{JWTSecret: "shell-test"}, nil, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newStack(t *testing.T, ts *httptest.Server, path, token string) *stack {
	t.Helper()

	store := database.NewMemoryStore(token)
	client, err := api.NewClient(config.API{BaseURL: ts.URL + "/api", Pool: config.DefaultPool}, store, nil, nil)
	require.NoError(t, err)

	sess := session.New(client, store, nil, session.Options{BootstrapTimeout: 5 * time.Second})
	r, err := router.New(router.NewMemoryHistory(path), origin, nil)
	require.NoError(t, err)

	sh := New(sess, r, hooks.Deps{Client: client}, Options{Filters: DefaultFilters(), RefetchInterval: time.Hour}, nil)
	t.Cleanup(sh.Dispose)

	log := &viewLog{}
	sh.Subscribe(log.add)

	return &stack{shell: sh, client: client, store: store, views: log}
}

func login(t *testing.T, s *stack, email string) {
	t.Helper()
	err := s.shell.Session().Login(context.Background(), authmodels.Credentials{Email: email, Password: mockapi.DemoPassword})
	require.NoError(t, err)
}

func protected(name string) view.View {
	return view.View{Kind: view.Protected, Name: name}
}

func TestShell_AnonymousLanding(t *testing.T) {
	s := newStack(t, newMockServer(t), "/", "")
	s.shell.Init(context.Background())

	v, model := s.shell.Current()
	assert.Equal(t, view.View{Kind: view.Landing}, v)
	assert.Nil(t, model)
	assert.Equal(t, session.Anonymous, s.shell.Session().Snapshot().State())
}

func TestShell_ProtectedPathRequiresLogin(t *testing.T) {
	s := newStack(t, newMockServer(t), "/alerts", "")
	s.shell.Init(context.Background())

	v, model := s.shell.Current()
	assert.Equal(t, view.View{Kind: view.Login}, v)
	assert.Nil(t, model)
}

func TestShell_LoginShowsDashboard(t *testing.T) {
	s := newStack(t, newMockServer(t), "/", "")
	s.shell.Init(context.Background())

	login(t, s, "admin@example.com")

	v, model := s.shell.Current()
	require.Equal(t, protected(view.Dashboard), v)
	require.NotNil(t, model)
	require.NotNil(t, model.Dashboard)
	require.NotNil(t, model.RecentAlerts)
	assert.Nil(t, model.Facilities)

	model.Wait()
	dash := model.Dashboard.State()
	assert.Empty(t, dash.Error)
	require.NotNil(t, dash.Data.Metrics)
	assert.Equal(t, 1247, dash.Data.Metrics.TotalFacilities)
	assert.Len(t, dash.Data.ReportingCompleteness, 2)

	recent := model.RecentAlerts.State()
	require.Len(t, recent.Data, 1)
	assert.Equal(t, "1", recent.Data[0].ID)

	assert.Equal(t, []view.View{
		{Kind: view.Loading},
		{Kind: view.Landing},
		{Kind: view.Loading},
		protected(view.Dashboard),
	}, s.views.all())
}

func TestShell_NavigateSwapsViewModel(t *testing.T) {
	s := newStack(t, newMockServer(t), "/", "")
	s.shell.Init(context.Background())
	login(t, s, "admin@example.com")

	_, dashboard := s.shell.Current()
	require.NotNil(t, dashboard)
	assert.True(t, dashboard.Dashboard.Polling())

	s.shell.Router().Navigate("/facilities")

	v, model := s.shell.Current()
	require.Equal(t, protected(view.Facilities), v)
	require.NotNil(t, model.Facilities)
	assert.NotSame(t, dashboard, model)
	assert.False(t, dashboard.Dashboard.Polling(), "previous view's hooks are closed")
	assert.False(t, dashboard.RecentAlerts.Polling())
	assert.True(t, model.Facilities.Polling())

	model.Wait()
	assert.Len(t, model.Facilities.State().Data, 4)

	s.shell.Router().Navigate("/stock")
	v, _ = s.shell.Current()
	assert.Equal(t, protected(view.Stock), v)

	require.True(t, s.shell.Router().Back())
	v, _ = s.shell.Current()
	assert.Equal(t, protected(view.Facilities), v)
}

func TestShell_SamePathKeepsViewModel(t *testing.T) {
	s := newStack(t, newMockServer(t), "/", "")
	s.shell.Init(context.Background())
	login(t, s, "admin@example.com")
	s.shell.Router().Navigate("/alerts")
	_, first := s.shell.Current()

	s.shell.Router().Navigate("/alerts")
	_, second := s.shell.Current()
	assert.Same(t, first, second)
}

func TestShell_BootstrapWithStoredToken(t *testing.T) {
	ts := newMockServer(t)

	seed, err := api.NewClient(config.API{BaseURL: ts.URL + "/api", Pool: config.DefaultPool}, nil, nil, nil)
	require.NoError(t, err)
	resp, err := seed.Login(context.Background(), authmodels.Credentials{Email: "analyst@example.com", Password: mockapi.DemoPassword})
	require.NoError(t, err)

	s := newStack(t, ts, "/facilities", resp.Data.Token)
	s.shell.Init(context.Background())

	v, model := s.shell.Current()
	assert.Equal(t, protected(view.Facilities), v)
	require.NotNil(t, model)
	assert.Equal(t, []view.View{{Kind: view.Loading}, protected(view.Facilities)}, s.views.all())

	snap := s.shell.Session().Snapshot()
	assert.Equal(t, "analyst@example.com", snap.User.Email)
}

func TestShell_BootstrapWithRejectedToken(t *testing.T) {
	s := newStack(t, newMockServer(t), "/stock", "stale-token")
	s.shell.Init(context.Background())

	v, model := s.shell.Current()
	assert.Equal(t, view.View{Kind: view.Login}, v)
	assert.Nil(t, model)

	token, err := s.store.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestShell_LogoutClosesViewModel(t *testing.T) {
	s := newStack(t, newMockServer(t), "/alerts", "")
	s.shell.Init(context.Background())
	login(t, s, "facility@example.com")

	_, model := s.shell.Current()
	require.NotNil(t, model)
	require.NotNil(t, model.Alerts)

	s.shell.Session().Logout(context.Background())

	v, current := s.shell.Current()
	assert.Equal(t, view.View{Kind: view.Login}, v)
	assert.Nil(t, current)
	assert.False(t, model.Alerts.Polling())
	assert.Empty(t, s.client.Token())
}

func TestShell_LinkClick(t *testing.T) {
	s := newStack(t, newMockServer(t), "/", "")
	s.shell.Init(context.Background())
	login(t, s, "admin@example.com")

	assert.True(t, s.shell.Router().HandleLinkClick(origin+"/stock?x=1#top"))
	v, _ := s.shell.Current()
	assert.Equal(t, protected(view.Stock), v)

	assert.False(t, s.shell.Router().HandleLinkClick("https://example.org/alerts"))
	v, _ = s.shell.Current()
	assert.Equal(t, protected(view.Stock), v)
}

func TestShell_Dispose(t *testing.T) {
	s := newStack(t, newMockServer(t), "/", "")
	s.shell.Init(context.Background())
	login(t, s, "admin@example.com")
	_, model := s.shell.Current()
	require.NotNil(t, model)

	s.shell.Dispose()
	s.shell.Dispose()

	assert.False(t, model.Dashboard.Polling())
	v, current := s.shell.Current()
	assert.Equal(t, protected(view.Dashboard), v)
	assert.Nil(t, current)

	s.shell.Router().Navigate("/alerts")
	v, _ = s.shell.Current()
	assert.Equal(t, protected(view.Dashboard), v, "no reselection after dispose")
}
