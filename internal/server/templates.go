package server

import (
	_ "embed"
	"html/template"

	"github.com/dgellow/firebase-front/internal/config"
	"github.com/dgellow/firebase-front/internal/push"
	"github.com/dgellow/firebase-front/internal/session"
	"github.com/dgellow/firebase-front/internal/signin"
)

//go:embed templates/index.html
var indexTemplateHTML string

//go:embed templates/dashboard.html
var dashboardTemplateHTML string

//go:embed templates/redirect.html
var redirectTemplateHTML string

//go:embed templates/setup_guide.html
var setupGuideTemplateHTML string

//go:embed templates/test_notification.html
var testNotificationTemplateHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexTemplateHTML))
var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardTemplateHTML))
var redirectTemplate = template.Must(template.New("redirect").Parse(redirectTemplateHTML))
var setupGuideTemplate = template.Must(template.New("setup_guide").Parse(setupGuideTemplateHTML))
var testNotificationTemplate = template.Must(template.New("test_notification").Parse(testNotificationTemplateHTML))

// IndexPageData backs the sign-in entry view
type IndexPageData struct {
	Host      string
	IsPreview bool
	Advisory  *signin.Advisory
}

// DashboardPageData backs the dashboard view
type DashboardPageData struct {
	User          *session.User
	Token         string
	Permission    string
	Fault         string
	Notifications []push.NotificationRecord
}

// RedirectPageData backs the redirect completion view
type RedirectPageData struct {
	Success bool
	Error   string
}

// SetupGuidePageData backs the setup guide view
type SetupGuidePageData struct {
	Host    string
	Domains []string
	Config  config.ProviderConfig
}

// TestNotificationPageData backs the test notification view
type TestNotificationPageData struct {
	Token string
}
