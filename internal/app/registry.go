package app

import (
	"time"

	"github.com/xnk3-aplus/360-Base/internal/attendance"
	"github.com/xnk3-aplus/360-Base/internal/basehr"
	"github.com/xnk3-aplus/360-Base/internal/config"
	"github.com/xnk3-aplus/360-Base/internal/identity"
	"github.com/xnk3-aplus/360-Base/internal/leave"
	"github.com/xnk3-aplus/360-Base/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const directoryTTL = time.Hour

// buildReportService assembles the full dependency graph of the report
// module. It is shared by the HTTP app and the batch worker.
func buildReportService(
	cfg *config.Config,
	rdb *redis.Client,
	kafkaWriter *kafka.Writer,
) (*report.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// --- Upstream clients ---
	httpClient := basehr.NewClient(cfg.UpstreamTimeout)
	accountClient := basehr.NewAccountClient(httpClient, "", cfg.AccountToken, cfg.AccountGroupPath, loc)
	checkinClient := basehr.NewCheckinClient(httpClient, "", cfg.CheckinToken, loc)
	timeoffClient := basehr.NewTimeoffClient(httpClient, "", cfg.TimeoffToken, loc)
	goalClient := basehr.NewGoalClient(httpClient, "", cfg.GoalToken, loc)
	weworkClient := basehr.NewWeworkClient(httpClient, "", cfg.WeworkToken, loc)
	workflowClient := basehr.NewWorkflowClient(httpClient, "", cfg.WorkflowToken, loc)
	insideClient := basehr.NewInsideClient(httpClient, "", cfg.InsideToken, loc)

	// --- Identity & classification ---
	directoryCache := identity.NewCache(accountClient, rdb, directoryTTL)
	resolver := identity.NewResolver()
	classifier := leave.NewClassifier(cfg.SimilarityThreshold)

	rules := attendance.DefaultRules()
	rules.EarlyStartHour = cfg.EarlyStartHour
	rules.LateCutoffHour = cfg.LateCutoffHour
	rules.LateCutoffMinute = cfg.LateCutoffMinute
	rules.EndOfDayHour = cfg.EndOfDayHour
	rules.EndOfDayMinute = cfg.EndOfDayMinute
	rules.LunchBreakHours = cfg.LunchBreakHours
	rules.HolidayThreshold = cfg.HolidayThreshold
	rules.WeeklyQuotaHours = cfg.WeeklyQuotaHours

	// --- Optional delivery and enrichment ---
	var mailer report.Mailer
	if cfg.SMTPUser != "" && cfg.SMTPPassword != "" {
		mailer = report.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	}

	var insight report.InsightGenerator
	if cfg.InsightAPIURL != "" && cfg.InsightAPIKey != "" {
		insight = report.NewLLMInsight(cfg.InsightAPIURL, cfg.InsightAPIKey, cfg.InsightModel)
	}

	var publisher report.EventPublisher
	if kafkaWriter != nil {
		publisher = report.NewKafkaEventPublisher(kafkaWriter)
	}

	sources := report.Sources{
		Checkin: checkinClient,
		Timeoff: timeoffClient,
		Goal:    goalClient,
		Tasks:   weworkClient,
		Jobs:    workflowClient,
		Feed:    insideClient,
		UserMap: accountClient,
	}

	return report.NewService(
		directoryCache,
		resolver,
		classifier,
		sources,
		rules,
		loc,
		mailer,
		insight,
		publisher,
	), nil
}

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	rdb *redis.Client,
	kafkaWriter *kafka.Writer,
) error {
	service, err := buildReportService(cfg, rdb, kafkaWriter)
	if err != nil {
		return err
	}

	handler := report.NewHandler(service)

	api := router.Group("/api/v1")
	{
		report.RegisterRoutes(api, handler, cfg.APIAccessToken, zap.L())
	}

	return nil
}
