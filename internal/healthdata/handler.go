package healthdata

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/healthrec/engine/internal/auth"
	"github.com/healthrec/engine/internal/telemetry/metrics"
	"github.com/healthrec/engine/internal/telemetry/tracing"
	"github.com/healthrec/engine/pkg"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=healthdata

type healthAnalyzer interface {
	WeeklyTrend(ctx context.Context, userID int, windowDays int) (*WeeklyTrend, error)
	ChartSeries(ctx context.Context, userID int, metric Metric) (*ChartSeries, error)
	RecordOrDefault(ctx context.Context, userID int, date time.Time) (*DailyRecord, error)
}

type metricWriter interface {
	WriteMetric(ctx context.Context, userID int, metric Metric, value float64, date time.Time) (*DailyRecord, error)
}

type recordsLister interface {
	ListAll(ctx context.Context, userID int) ([]DailyRecord, error)
}

type syncRunner interface {
	// SyncUser runs one provider fetch + reconciliation pass,
	// returning the number of reconciled dates.
	SyncUser(ctx context.Context, userID int) (int, error)
}

type sessionResolver interface {
	SessionUserID(ctx context.Context, token string) (int, error)
}

// trendSummarizer turns a computed trend into short human-readable
// summary lines. Must not fail the request, fallback text is on the
// implementation.
type trendSummarizer interface {
	TrendSummaries(ctx context.Context, userID int, trend *WeeklyTrend) []string
}

type Handler struct {
	analyzer       healthAnalyzer
	writer         metricWriter
	lister         recordsLister
	syncer         syncRunner
	authService    sessionResolver
	summarizer     trendSummarizer
	metricsManager *metrics.Manager
}

func NewHandler(
	analyzer healthAnalyzer,
	writer metricWriter,
	lister recordsLister,
	syncer syncRunner,
	authService sessionResolver,
	summarizer trendSummarizer,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		analyzer:       analyzer,
		writer:         writer,
		lister:         lister,
		syncer:         syncer,
		authService:    authService,
		summarizer:     summarizer,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	healthSubrouter := mainRouter.PathPrefix("/health").Subrouter()
	healthSubrouter.
		HandleFunc("/sync", handler.handleSync).
		Methods("POST", "OPTIONS").Name("health-sync")
	healthSubrouter.
		HandleFunc("/metrics", handler.handleGetRecord).
		Methods("GET", "OPTIONS").Name("health-metrics-get")
	healthSubrouter.
		HandleFunc("/metrics", handler.handleAddMetric).
		Methods("POST", "OPTIONS").Name("health-metrics-add")
	healthSubrouter.
		HandleFunc("/data", handler.handleListData).
		Methods("GET", "OPTIONS").Name("health-data")
	healthSubrouter.
		HandleFunc("/data/export", handler.handleExport).
		Methods("GET", "OPTIONS").Name("health-data-export")
	healthSubrouter.
		HandleFunc("/chart/{metric}", handler.handleChart).
		Methods("GET", "OPTIONS").Name("health-chart")
	healthSubrouter.
		HandleFunc("/summary/weekly", handler.handleWeeklySummary).
		Methods("GET", "OPTIONS").Name("health-summary-weekly")
}

func (handler *Handler) userIDFromRequest(ctx context.Context, r *http.Request) (int, error) {
	token := r.Header.Get("X-HEALTHREC-TOKEN")
	if token == "" {
		return 0, auth.ErrSessionNotFound
	}
	return handler.authService.SessionUserID(ctx, token)
}

func (handler *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthHandler.sync")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	handler.metricsManager.CounterHealthDataSyncs.Inc()
	syncStart := time.Now()

	reconciledDates, err := handler.syncer.SyncUser(ctx, userID)
	if err != nil {
		// partial reconciliation is fine, some dates may have landed
		handler.metricsManager.CounterHealthDataSyncFails.Inc()
		log.Errorf("health data sync for user %d: %s", userID, err)
		http.Error(w, "sync failed", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.HistSyncDuration.Observe(time.Since(syncStart).Seconds())
	log.Debugf("health data sync for user %d done, %d dates reconciled", userID, reconciledDates)

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"syncedDates": %d}`, reconciledDates))
}

func (handler *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthHandler.getRecord")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	date := time.Now()
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		date, err = time.Parse("2006-01-02", dateParam)
		if err != nil {
			http.Error(w, "error, invalid date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	record, err := handler.analyzer.RecordOrDefault(ctx, userID, date)
	if err != nil {
		log.Errorf("get record, user %d: %s", userID, err)
		http.Error(w, "get health data failed", http.StatusInternalServerError)
		return
	}

	recordJson, err := json.Marshal(record)
	if err != nil {
		log.Errorf("get record, marshal: %s", err)
		http.Error(w, "get health data failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, recordJson)
}

func (handler *Handler) handleAddMetric(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthHandler.addMetric")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	type addMetricRequest struct {
		Metric string  `json:"metric"`
		Value  float64 `json:"value"`
		Date   string  `json:"date"` // optional, YYYY-MM-DD, defaults to today
	}

	var addReq addMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Errorf("add metric, unmarshal json params: %s", err)
		http.Error(w, "add metric failed", http.StatusBadRequest)
		return
	}

	metric, err := ParseMetric(addReq.Metric)
	if err != nil {
		http.Error(w, fmt.Sprintf("error, unknown metric: %s", addReq.Metric), http.StatusBadRequest)
		return
	}

	if addReq.Value < 0 {
		http.Error(w, "error, metric value must be >= 0", http.StatusBadRequest)
		return
	}

	date := time.Now()
	if addReq.Date != "" {
		date, err = time.Parse("2006-01-02", addReq.Date)
		if err != nil {
			http.Error(w, "error, invalid date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	record, err := handler.writer.WriteMetric(ctx, userID, metric, addReq.Value, date)
	if err != nil {
		log.Errorf("add metric [%s] for user %d: %s", metric, userID, err)
		http.Error(w, "add metric failed", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterMetricsAdded.With(
		prometheus.Labels{"metric": string(metric)},
	).Inc()

	recordJson, err := json.Marshal(record)
	if err != nil {
		log.Errorf("add metric, marshal record: %s", err)
		http.Error(w, "add metric failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, recordJson, http.StatusCreated)
}

func (handler *Handler) handleListData(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthHandler.listData")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	records, err := handler.lister.ListAll(ctx, userID)
	if err != nil {
		log.Errorf("list health data, user %d: %s", userID, err)
		http.Error(w, "list health data failed", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []DailyRecord{}
	}

	recordsJson, err := json.Marshal(records)
	if err != nil {
		log.Errorf("list health data, marshal: %s", err)
		http.Error(w, "list health data failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, recordsJson)
}

func (handler *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthHandler.export")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		http.Error(w, "error, format must be csv or json", http.StatusBadRequest)
		return
	}

	records, err := handler.lister.ListAll(ctx, userID)
	if err != nil {
		log.Errorf("export health data, user %d: %s", userID, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	if format == "json" {
		if records == nil {
			records = []DailyRecord{}
		}
		recordsJson, err := json.Marshal(records)
		if err != nil {
			log.Errorf("export health data, marshal: %s", err)
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="health_data.json"`)
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, recordsJson)
		return
	}

	csvBytes, err := records2csv(records)
	if err != nil {
		log.Errorf("export health data, write csv: %s", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="health_data.csv"`)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.CSV, csvBytes)
}

func records2csv(records []DailyRecord) ([]byte, error) {
	var buf bytes.Buffer
	csvWriter := csv.NewWriter(&buf)

	header := []string{"date", "steps", "weight", "sleep_hours", "heart_rate", "activity_minutes", "calories"}
	if err := csvWriter.Write(header); err != nil {
		return nil, err
	}

	for _, record := range records {
		row := []string{
			record.Date.Format("2006-01-02"),
			strconv.Itoa(record.Steps),
			strconv.FormatFloat(record.Weight, 'f', -1, 64),
			strconv.FormatFloat(record.Sleep, 'f', -1, 64),
			record.HeartRate,
			strconv.Itoa(record.ActivityMinutes),
			strconv.Itoa(record.Calories),
		}
		if err := csvWriter.Write(row); err != nil {
			return nil, err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (handler *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthHandler.chart")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	metric, err := ParseMetric(vars["metric"])
	if err != nil {
		if errors.Is(err, ErrUnknownMetric) {
			http.Error(w, fmt.Sprintf("error, unknown metric: %s", vars["metric"]), http.StatusBadRequest)
			return
		}
		http.Error(w, "chart failed", http.StatusInternalServerError)
		return
	}

	series, err := handler.analyzer.ChartSeries(ctx, userID, metric)
	if err != nil {
		log.Errorf("chart [%s] for user %d: %s", metric, userID, err)
		http.Error(w, "chart failed", http.StatusInternalServerError)
		return
	}

	seriesJson, err := json.Marshal(series)
	if err != nil {
		log.Errorf("chart, marshal series: %s", err)
		http.Error(w, "chart failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, seriesJson)
}

func (handler *Handler) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthHandler.weeklySummary")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	windowDays := 0
	if windowParam := r.URL.Query().Get("window"); windowParam != "" {
		windowDays, err = strconv.Atoi(windowParam)
		if err != nil || windowDays < 1 || windowDays > 31 {
			http.Error(w, "error, invalid window, use 1-31", http.StatusBadRequest)
			return
		}
	}

	trend, err := handler.analyzer.WeeklyTrend(ctx, userID, windowDays)
	if err != nil {
		log.Errorf("weekly summary for user %d: %s", userID, err)
		http.Error(w, "weekly summary failed", http.StatusInternalServerError)
		return
	}

	if trend.Status == TrendStatusNoData {
		trend.Summary = []string{
			"No activity data available",
			"No sleep data available",
			"No heart rate data available",
		}
	} else if handler.summarizer != nil {
		trend.Summary = handler.summarizer.TrendSummaries(ctx, userID, trend)
	}

	trendJson, err := json.Marshal(trend)
	if err != nil {
		log.Errorf("weekly summary, marshal trend: %s", err)
		http.Error(w, "weekly summary failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, trendJson)
}
