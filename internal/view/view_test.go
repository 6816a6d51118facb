package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	dashboard := View{Kind: Protected, Name: Dashboard}

	tests := []struct {
		path    string
		auth    bool
		loading bool
		want    View
	}{
		{"/", false, false, View{Kind: Landing}},
		{"/", true, false, dashboard},
		{"/", false, true, View{Kind: Loading}},
		{"/", true, true, View{Kind: Loading}},
		{"/scale", false, false, View{Kind: ScaleLanding}},
		{"/scale", true, true, View{Kind: ScaleLanding}},
		{"/scale", false, true, View{Kind: ScaleLanding}},
		{"/login", false, false, View{Kind: Login}},
		{"/login", true, false, View{Kind: Login}},
		{"/login", false, true, View{Kind: Login}},
		{"/facilities", false, false, View{Kind: Login}},
		{"/facilities", false, true, View{Kind: Loading}},
		{"/facilities", true, false, View{Kind: Protected, Name: Facilities}},
		{"/stock", true, false, View{Kind: Protected, Name: Stock}},
		{"/alerts", true, false, View{Kind: Protected, Name: Alerts}},
		{"/dashboard", true, false, dashboard},
		{"/nope", true, false, dashboard},
		{"/nope", false, false, View{Kind: Login}},
		{"/facilities/", true, false, dashboard},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s auth=%v loading=%v", tt.path, tt.auth, tt.loading), func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.path, tt.auth, tt.loading))
		})
	}
}

func TestSelect_LoadingWinsExceptPublicRoutes(t *testing.T) {
	for _, p := range append(Routes(), "/unknown") {
		for _, auth := range []bool{false, true} {
			got := Select(p, auth, true)
			switch p {
			case "/scale":
				assert.Equal(t, ScaleLanding, got.Kind, p)
			case "/login":
				assert.Equal(t, Login, got.Kind, p)
			default:
				assert.Equal(t, Loading, got.Kind, p)
			}
		}
	}
}

func TestView_String(t *testing.T) {
	assert.Equal(t, "facilities", View{Kind: Protected, Name: Facilities}.String())
	assert.Equal(t, "landing", View{Kind: Landing}.String())
}
