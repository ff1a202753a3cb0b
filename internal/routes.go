package internal

import (
	"net/http"
	"surveycore/internal/controllers"
	"surveycore/internal/providers"
)

// InitRoutes registers the respondent routes unauthenticated and every
// administrative route behind the tenant check.
func InitRoutes(survey *controllers.SurveyController, reports *controllers.ReportController, campaigns *controllers.CampaignController, auth providers.AuthProviderInterface) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/survey/start", http.HandlerFunc(survey.Start))
	routers.Post("/survey/save", http.HandlerFunc(survey.Save))
	routers.Post("/survey/submit", http.HandlerFunc(survey.Submit))
	routers.Post("/survey/demographics", http.HandlerFunc(survey.Demographics))

	routers.Get("/reports/campaign", http.HandlerFunc(reports.Campaign), auth.RequireTenant)
	routers.Get("/reports/department", http.HandlerFunc(reports.Department), auth.RequireTenant)
	routers.Get("/reports/360", http.HandlerFunc(reports.Assessment360), auth.RequireTenant)

	routers.Post("/campaigns", http.HandlerFunc(campaigns.Register), auth.RequireTenant)
	routers.Post("/campaigns/launch", http.HandlerFunc(campaigns.Launch), auth.RequireTenant)
	routers.Post("/campaigns/close", http.HandlerFunc(campaigns.Close), auth.RequireTenant)
	routers.Post("/campaigns/remind", http.HandlerFunc(campaigns.Remind), auth.RequireTenant)
	routers.Get("/campaigns/status", http.HandlerFunc(campaigns.Status), auth.RequireTenant)
	return routers
}
