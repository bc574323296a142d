package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/healthrec/engine/internal/auth"
	"github.com/healthrec/engine/internal/healthdata"
	"github.com/healthrec/engine/internal/telemetry/metrics"
	"github.com/healthrec/engine/internal/telemetry/tracing"
	"github.com/healthrec/engine/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=assistant

const (
	recommendationsWindowDays = 7
	maxListedLines            = 4
	maxFactLines              = 7

	explainDisclaimer = "\n\nPlease note: This is for informational purposes only and not a substitute for " +
		"professional medical advice. Always consult with a healthcare provider for proper diagnosis and treatment."
)

type textGenerator interface {
	Generate(ctx context.Context, cacheKey, prompt string) (string, error)
	StatusOK(ctx context.Context) bool
}

type recordsReader interface {
	ListRange(ctx context.Context, userID int, from, to time.Time) ([]healthdata.DailyRecord, error)
}

type sessionResolver interface {
	SessionUserID(ctx context.Context, token string) (int, error)
}

type emailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Handler struct {
	generator      textGenerator
	records        recordsReader
	authService    sessionResolver
	sender         emailSender
	metricsManager *metrics.Manager
	nowFunc        func() time.Time
}

func NewHandler(
	generator textGenerator,
	records recordsReader,
	authService sessionResolver,
	sender emailSender,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		generator:      generator,
		records:        records,
		authService:    authService,
		sender:         sender,
		metricsManager: metricsManager,
		nowFunc:        time.Now,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	assistantSubrouter := mainRouter.PathPrefix("/assistant").Subrouter()
	assistantSubrouter.
		HandleFunc("/recommendations", handler.handleRecommendations).
		Methods("POST", "OPTIONS").Name("assistant-recommendations")
	assistantSubrouter.
		HandleFunc("/facts", handler.handleFacts).
		Methods("POST", "OPTIONS").Name("assistant-facts")
	assistantSubrouter.
		HandleFunc("/explain", handler.handleExplain).
		Methods("POST", "OPTIONS").Name("assistant-explain")
	assistantSubrouter.
		HandleFunc("/status", handler.handleStatus).
		Methods("GET", "OPTIONS").Name("assistant-status")
	assistantSubrouter.
		HandleFunc("/report/doctor", handler.handleDoctorReport).
		Methods("POST", "OPTIONS").Name("assistant-doctor-report")
}

func (handler *Handler) userIDFromRequest(ctx context.Context, r *http.Request) (int, error) {
	token := r.Header.Get("X-HEALTHREC-TOKEN")
	if token == "" {
		return 0, auth.ErrSessionNotFound
	}
	return handler.authService.SessionUserID(ctx, token)
}

func (handler *Handler) lastWeekRecords(ctx context.Context, userID int) ([]healthdata.DailyRecord, error) {
	today := healthdata.Day(handler.nowFunc())
	from := today.AddDate(0, 0, -(recommendationsWindowDays - 1))
	return handler.records.ListRange(ctx, userID, from, today)
}

// records2prompt renders records the way the prompts expect them, one
// line per day, newest first.
func records2prompt(records []healthdata.DailyRecord) string {
	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, fmt.Sprintf(
			"Date: %s, Steps: %d, HR: %s, Sleep: %.1fh, Weight: %.1fkg, Activity: %dmin, Calories: %d",
			record.Date.Format("2006-01-02"), record.Steps, record.HeartRate,
			record.Sleep, record.Weight, record.ActivityMinutes, record.Calories,
		))
	}
	return strings.Join(lines, "\n")
}

// splitLines returns the non-empty trimmed lines of a generated text,
// with leading list dashes stripped, capped at max.
func splitLines(text string, max int) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == max {
			break
		}
	}
	return lines
}

type generalRecommendation struct {
	Summary  string   `json:"summary"`
	Insights []string `json:"insights"`
	Tips     []string `json:"tips"`
}

type recommendations struct {
	General     generalRecommendation `json:"general"`
	Correlation []string              `json:"correlation"`
	Tips        []string              `json:"tips"`
}

type recommendationsResponse struct {
	Recommendations recommendations `json:"recommendations"`
}

func noDataRecommendations() recommendationsResponse {
	return recommendationsResponse{
		Recommendations: recommendations{
			General: generalRecommendation{
				Summary:  "No sufficient data available for recommendations.",
				Insights: []string{"Connect your health tracking devices to get personalized recommendations."},
				Tips:     []string{"Start tracking your daily activities to receive personalized insights."},
			},
			Correlation: []string{"Connect your devices to see correlations between different health metrics."},
			Tips:        []string{"Enable provider sync for real-time health monitoring."},
		},
	}
}

// parseGeneral splits a "Summary: ... Insights: ..." response into its
// two sections. Models do not always follow the format, so a response
// without the markers falls back to first-line summary + rest insights.
func parseGeneral(text string) (summary string, insights []string) {
	before, after, found := strings.Cut(text, "Insights:")
	if found {
		summary = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(before), "Summary:"))
		return summary, splitLines(after, maxListedLines)
	}

	lines := splitLines(text, maxListedLines+1)
	if len(lines) == 0 {
		return "", nil
	}
	summary = strings.TrimSpace(strings.TrimPrefix(lines[0], "Summary:"))
	return summary, lines[1:]
}

func (handler *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "assistantHandler.recommendations")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	handler.metricsManager.CounterAssistantRequests.Inc()

	records, err := handler.lastWeekRecords(ctx, userID)
	if err != nil {
		log.Errorf("recommendations, list records for user %d: %s", userID, err)
		http.Error(w, "recommendations failed", http.StatusInternalServerError)
		return
	}
	if len(records) == 0 {
		writeJson(w, noDataRecommendations())
		return
	}

	dataStr := records2prompt(records)
	prompts := map[string]string{
		"general": fmt.Sprintf(
			"Based on the following health data:\n%s\nFirst provide a 2-3 sentence summary of the user's health status and main recommendations. Then provide 4 specific actionable insights as bullet points. Format the response with 'Summary:' and 'Insights:' sections.",
			dataStr),
		"correlation": fmt.Sprintf(
			"Based on the following health data:\n%s\nProvide 4 lines of health correlation insights based on the health data patterns.",
			dataStr),
		"tips": fmt.Sprintf(
			"Based on the following health data:\n%s\nProvide 4 lines of personalized tips based on the health metrics and patterns.",
			dataStr),
	}

	generated := map[string]string{}
	for kind, prompt := range prompts {
		cacheKey := fmt.Sprintf("recommendations::%d::%s", userID, kind)
		text, err := handler.generator.Generate(ctx, cacheKey, prompt)
		if err != nil {
			log.Errorf("recommendations [%s] for user %d: %s", kind, userID, err)
			http.Error(w, "recommendations failed", http.StatusInternalServerError)
			return
		}
		generated[kind] = text
	}

	summary, insights := parseGeneral(generated["general"])
	tips := splitLines(generated["tips"], maxListedLines)
	writeJson(w, recommendationsResponse{
		Recommendations: recommendations{
			General: generalRecommendation{
				Summary:  summary,
				Insights: insights,
				Tips:     tips,
			},
			Correlation: splitLines(generated["correlation"], maxListedLines),
			Tips:        tips,
		},
	})
}

func (handler *Handler) handleFacts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "assistantHandler.facts")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	handler.metricsManager.CounterAssistantRequests.Inc()

	records, err := handler.lastWeekRecords(ctx, userID)
	if err != nil {
		log.Errorf("health facts, list records for user %d: %s", userID, err)
		http.Error(w, "health facts failed", http.StatusInternalServerError)
		return
	}

	type factsResponse struct {
		Facts []string `json:"facts"`
	}

	if len(records) == 0 {
		writeJson(w, factsResponse{Facts: []string{"No sufficient data available for health facts."}})
		return
	}

	prompt := fmt.Sprintf(
		"Based on the following health data:\n%s\nProvide 7 lines of personalized health facts about the user's health (could be cool, simple and informative).",
		records2prompt(records))

	text, err := handler.generator.Generate(ctx, fmt.Sprintf("facts::%d", userID), prompt)
	if err != nil {
		log.Errorf("health facts for user %d: %s", userID, err)
		http.Error(w, "health facts failed", http.StatusInternalServerError)
		return
	}

	writeJson(w, factsResponse{Facts: splitLines(text, maxFactLines)})
}

func (handler *Handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "assistantHandler.explain")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	handler.metricsManager.CounterAssistantRequests.Inc()

	type explainRequest struct {
		Message string `json:"message"`
	}

	var explainReq explainRequest
	if err := json.NewDecoder(r.Body).Decode(&explainReq); err != nil {
		log.Errorf("explain, unmarshal json params: %s", err)
		http.Error(w, "explain failed", http.StatusBadRequest)
		return
	}
	if explainReq.Message == "" {
		http.Error(w, "error, message empty", http.StatusBadRequest)
		return
	}

	prompt := fmt.Sprintf(
		`As a friendly health advisor, I need help with the following:

User's input: %q
Please provide:
1. Explain what each measurement or unit means in simple terms
2. Whether the number(s) are within normal ranges
3. What the number(s) suggest about their health
4. Simple lifestyle recommendations if needed
5. Clear advice on whether they should consult a healthcare provider

Make the response conversational and easy to understand, as if you're explaining to a friend.
If any terms are medical or technical, please explain them in parentheses.`,
		explainReq.Message)

	// user input varies per request, no point caching
	text, err := handler.generator.Generate(ctx, "", prompt)
	if err != nil {
		log.Errorf("explain metrics for user %d: %s", userID, err)
		http.Error(w, "explain failed", http.StatusInternalServerError)
		return
	}

	type explainResponse struct {
		Explanation string `json:"explanation"`
	}
	writeJson(w, explainResponse{Explanation: text + explainDisclaimer})
}

func (handler *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "assistantHandler.status")
	defer span.End()

	status := "offline"
	if handler.generator.StatusOK(ctx) {
		status = "online"
	}
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"status": "%s"}`, status))
}

func (handler *Handler) handleDoctorReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "assistantHandler.doctorReport")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	handler.metricsManager.CounterAssistantRequests.Inc()

	type doctorReportRequest struct {
		Email       string   `json:"email"`
		Metrics     []string `json:"metrics"`
		CustomNotes string   `json:"custom_notes"`
	}

	var reportReq doctorReportRequest
	if err := json.NewDecoder(r.Body).Decode(&reportReq); err != nil {
		log.Errorf("doctor report, unmarshal json params: %s", err)
		http.Error(w, "doctor report failed", http.StatusBadRequest)
		return
	}
	if reportReq.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}

	records, err := handler.lastWeekRecords(ctx, userID)
	if err != nil {
		log.Errorf("doctor report, list records for user %d: %s", userID, err)
		http.Error(w, "doctor report failed", http.StatusInternalServerError)
		return
	}

	prompt := fmt.Sprintf(
		"Generate a detailed health report for a doctor based on the following health data:\n%s\nFocus on these metrics: %s. Additional notes: %s",
		records2prompt(records), strings.Join(reportReq.Metrics, ", "), reportReq.CustomNotes)

	report, err := handler.generator.Generate(ctx, "", prompt)
	if err != nil {
		log.Errorf("doctor report for user %d: %s", userID, err)
		http.Error(w, "doctor report failed", http.StatusInternalServerError)
		return
	}

	if err := handler.sender.Send(ctx, reportReq.Email, "Your Health Report", report); err != nil {
		log.Errorf("doctor report, send mail for user %d: %s", userID, err)
		http.Error(w, "doctor report failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"message": "Report sent successfully"}`)
}

func writeJson(w http.ResponseWriter, payload any) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal assistant response: %s", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, payloadBytes)
}
