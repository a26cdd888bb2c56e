package handlers

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retail-lens/backend/internal/analytics/affinity"
	"github.com/retail-lens/backend/internal/analytics/cohort"
	"github.com/retail-lens/backend/internal/analytics/predict"
	"github.com/retail-lens/backend/internal/analytics/reports"
	"github.com/retail-lens/backend/internal/analytics/rfm"
	"github.com/retail-lens/backend/internal/analytics/sentiment"
	"github.com/retail-lens/backend/internal/dataset"
	"github.com/retail-lens/backend/internal/ingestion"
	"github.com/retail-lens/backend/internal/metrics"
	"github.com/retail-lens/backend/internal/storage/models"
	"github.com/retail-lens/backend/internal/storage/scratch"
	"github.com/retail-lens/backend/internal/storage/sqlite"
	"github.com/retail-lens/backend/pkg/config"
	"github.com/retail-lens/backend/pkg/logger"
	"github.com/retail-lens/backend/pkg/retry"
)

type AnalysisHandler struct {
	cleaner *ingestion.Cleaner
	scratch *scratch.Store
	history *sqlite.Client
	cfg     config.AnalysisConfig
}

func NewAnalysisHandler(cleaner *ingestion.Cleaner, store *scratch.Store, history *sqlite.Client, cfg config.AnalysisConfig) *AnalysisHandler {
	return &AnalysisHandler{
		cleaner: cleaner,
		scratch: store,
		history: history,
		cfg:     cfg,
	}
}

type analysisFunc func(c *fiber.Ctx, table *dataset.Table) (fiber.Map, error)

// run stages the upload under a per-request key, cleans it from scratch
// and hands the canonical table to the analysis. Every call reprocesses
// the full file; nothing is shared between requests except the audit row.
func (h *AnalysisHandler) run(c *fiber.Ctx, endpoint string, analyze analysisFunc) error {
	start := time.Now()

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	src, err := file.Open()
	if err != nil {
		logger.Error("failed to open upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	upload, err := h.scratch.Save(file.Filename, src)
	src.Close()
	if err != nil {
		logger.Error("failed to stage upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store uploaded file",
		})
	}
	defer func() {
		if err := h.scratch.Remove(upload.Key); err != nil {
			logger.Warn("failed to remove staged upload",
				zap.String("key", upload.Key), zap.Error(err))
		}
	}()

	raw, err := os.ReadFile(upload.Path)
	if err != nil {
		logger.Error("failed to read staged upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	table, err := h.cleaner.CleanAndLoad(raw)
	if err != nil {
		logger.Warn("cleaning failed",
			zap.String("endpoint", endpoint),
			zap.String("filename", file.Filename),
			zap.Error(err))
		h.recordRun(endpoint, file.Filename, nil, start, err)
		metrics.AnalysisTotal.WithLabelValues(endpoint, "error").Inc()
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	metrics.UploadsProcessed.Inc()
	metrics.RowsKept.Observe(float64(table.Len()))
	metrics.RowsDropped.WithLabelValues("malformed_lines").Add(float64(table.Dropped.MalformedLines))
	metrics.RowsDropped.WithLabelValues("missing_fields").Add(float64(table.Dropped.MissingFields))
	metrics.RowsDropped.WithLabelValues("bad_dates").Add(float64(table.Dropped.BadDates))
	metrics.RowsDropped.WithLabelValues("bad_numbers").Add(float64(table.Dropped.BadNumbers))

	result, err := analyze(c, table)
	if err != nil {
		logger.Warn("analysis failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		h.recordRun(endpoint, file.Filename, table, start, err)
		metrics.AnalysisTotal.WithLabelValues(endpoint, "error").Inc()
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	h.recordRun(endpoint, file.Filename, table, start, nil)
	metrics.AnalysisTotal.WithLabelValues(endpoint, "success").Inc()
	metrics.AnalysisDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	return c.JSON(result)
}

func (h *AnalysisHandler) recordRun(endpoint, filename string, table *dataset.Table, start time.Time, runErr error) {
	if h.history == nil {
		return
	}

	run := &models.AnalysisRun{
		ID:         uuid.NewString(),
		Endpoint:   endpoint,
		Filename:   filename,
		DurationMS: time.Since(start).Milliseconds(),
		Status:     "success",
		CreatedAt:  time.Now(),
	}
	if table != nil {
		run.RowsKept = table.Len()
		run.RowsDropped = table.Dropped.Total()
	}
	if runErr != nil {
		run.Status = "error"
		run.Error = runErr.Error()
	}

	cfg := retry.DefaultConfig()
	cfg.Logger = logger.Log
	if err := retry.Do(context.Background(), cfg, func() error {
		return h.history.InsertRun(run)
	}); err != nil {
		logger.Warn("failed to record analysis run", zap.Error(err))
	}
}

func statusForError(err error) int {
	var encodingErr *dataset.EncodingError
	var identifierErr *dataset.MissingIdentifierError
	var columnsErr *dataset.MissingColumnsError
	var emptyErr *dataset.EmptyDatasetError
	var insufficientErr *dataset.InsufficientDataError

	switch {
	case errors.As(err, &encodingErr), errors.As(err, &identifierErr), errors.As(err, &columnsErr):
		return fiber.StatusBadRequest
	case errors.As(err, &emptyErr), errors.As(err, &insufficientErr):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *AnalysisHandler) UploadCSV(c *fiber.Ctx) error {
	return h.run(c, "upload_csv", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{
			"message":      "File uploaded and cleaned successfully",
			"rows":         table.Len(),
			"rows_dropped": table.Dropped,
		}, nil
	})
}

func (h *AnalysisHandler) RFMAnalysis(c *fiber.Ctx) error {
	return h.run(c, "rfm_analysis", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		records, err := rfm.Compute(table)
		if err != nil {
			return nil, err
		}
		segments := make(map[string][]rfm.Record)
		for _, r := range records {
			segments[r.Segment] = append(segments[r.Segment], r)
		}
		return fiber.Map{"segment_data": segments}, nil
	})
}

func (h *AnalysisHandler) TrainModel(c *fiber.Ctx) error {
	return h.run(c, "train_model", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		records, err := rfm.Compute(table)
		if err != nil {
			return nil, err
		}
		result, err := predict.Repurchase(records, table, h.cfg.ChurnWindowDays, h.cfg.DiscountSeed)
		if err != nil {
			return nil, err
		}
		return fiber.Map{
			"confusion_matrix":      result.ConfusionMatrix,
			"classification_report": result.Report,
			"model_trained":         true,
		}, nil
	})
}

func (h *AnalysisHandler) ChurnPrediction(c *fiber.Ctx) error {
	return h.run(c, "churn_prediction", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		records, err := rfm.Compute(table)
		if err != nil {
			return nil, err
		}
		result, err := predict.Churn(records, h.cfg.ChurnWindowDays)
		if err != nil {
			return nil, err
		}
		return fiber.Map{
			"confusion_matrix":      result.ConfusionMatrix,
			"classification_report": result.Report,
			"churn_predictions":     result.Predictions,
		}, nil
	})
}

func (h *AnalysisHandler) RepurchasePrediction(c *fiber.Ctx) error {
	return h.run(c, "repurchase_prediction", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		records, err := rfm.Compute(table)
		if err != nil {
			return nil, err
		}
		result, err := predict.Repurchase(records, table, h.cfg.ChurnWindowDays, h.cfg.DiscountSeed)
		if err != nil {
			return nil, err
		}
		return fiber.Map{"repurchase_predictions": result.Predictions}, nil
	})
}

func (h *AnalysisHandler) CustomerLifetimeValue(c *fiber.Ctx) error {
	return h.run(c, "customer_lifetime_value", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"clv": reports.CustomerLifetimeValue(table)}, nil
	})
}

func (h *AnalysisHandler) ProductAffinity(c *fiber.Ctx) error {
	return h.run(c, "product_affinity", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		cfg := affinity.DefaultConfig()
		cfg.MinSupport = h.cfg.AffinityMinSupport
		cfg.MaxRules = h.cfg.AffinityMaxRules
		return fiber.Map{"affinity_rules": affinity.Rules(table, cfg)}, nil
	})
}

func (h *AnalysisHandler) SentimentAnalysis(c *fiber.Ctx) error {
	return h.run(c, "sentiment_analysis", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		summary, err := sentiment.Analyze(table)
		if err != nil {
			return nil, err
		}
		return fiber.Map{"sentiment_summary": summary}, nil
	})
}

func (h *AnalysisHandler) InventoryTurnover(c *fiber.Ctx) error {
	return h.run(c, "inventory_turnover", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"inventory_turnover": reports.InventoryTurnover(table)}, nil
	})
}

func (h *AnalysisHandler) DiscountImpact(c *fiber.Ctx) error {
	return h.run(c, "discount_impact", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"discount_impact": reports.DiscountImpact(table, h.cfg.DiscountSeed)}, nil
	})
}

func (h *AnalysisHandler) MonthlyRevenue(c *fiber.Ctx) error {
	return h.run(c, "monthly_revenue", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"monthly_revenue": reports.MonthlyRevenue(table)}, nil
	})
}

func (h *AnalysisHandler) DailyRevenue(c *fiber.Ctx) error {
	return h.run(c, "daily_revenue", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"daily_revenue": reports.DailyRevenue(table)}, nil
	})
}

func (h *AnalysisHandler) TopCustomers(c *fiber.Ctx) error {
	return h.run(c, "top_customers", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"top_customers": reports.TopCustomers(table)}, nil
	})
}

func (h *AnalysisHandler) TopProducts(c *fiber.Ctx) error {
	return h.run(c, "top_products", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"top_products": reports.TopProducts(table)}, nil
	})
}

func (h *AnalysisHandler) MonthlyCustomerAcquisition(c *fiber.Ctx) error {
	return h.run(c, "monthly_customer_acquisition", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"monthly_acquisition": reports.MonthlyAcquisition(table)}, nil
	})
}

func (h *AnalysisHandler) GeographicalAnalysis(c *fiber.Ctx) error {
	return h.run(c, "geographical_analysis", func(c *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		scaled := c.Query("scaled") == "true"
		return fiber.Map{"geographical_analysis": reports.Geography(table, scaled)}, nil
	})
}

func (h *AnalysisHandler) ProductReturnRate(c *fiber.Ctx) error {
	return h.run(c, "product_return_rate", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"product_return_rate": reports.ProductReturnRates(table)}, nil
	})
}

func (h *AnalysisHandler) CustomerActivityHeatmap(c *fiber.Ctx) error {
	return h.run(c, "customer_activity_heatmap", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		report := reports.ActivityHeatmap(table)
		return fiber.Map{
			"activity_heatmap": report.Activity,
			"peak_hour":        report.PeakHour,
			"peak_day":         report.PeakDay,
			"peak_day_name":    report.PeakDayName,
			"recommendation":   report.Recommendation,
		}, nil
	})
}

func (h *AnalysisHandler) SeasonalityAnalysis(c *fiber.Ctx) error {
	return h.run(c, "seasonality_analysis", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"seasonality": reports.Seasonality(table)}, nil
	})
}

func (h *AnalysisHandler) RetentionRate(c *fiber.Ctx) error {
	return h.run(c, "retention_rate", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		report := cohort.Compute(table)
		return fiber.Map{
			"retention_data": report.Cohorts,
			"avg_retention":  report.AvgRetention,
			"recommendation": report.Recommendation,
		}, nil
	})
}

func (h *AnalysisHandler) SalesDropAnalysis(c *fiber.Ctx) error {
	return h.run(c, "sales_drop_analysis", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		return fiber.Map{"sales_drops": reports.SalesDrops(table)}, nil
	})
}

func (h *AnalysisHandler) MarketingRecommendations(c *fiber.Ctx) error {
	return h.run(c, "marketing_recommendations", func(_ *fiber.Ctx, table *dataset.Table) (fiber.Map, error) {
		records, err := rfm.Compute(table)
		if err != nil {
			return nil, err
		}
		cfg := affinity.DefaultConfig()
		cfg.MinSupport = h.cfg.AffinityMinSupport
		cfg.MaxRules = h.cfg.AffinityMaxRules
		rules := affinity.Rules(table, cfg)
		return fiber.Map{
			"marketing_recommendations": reports.MarketingRecommendations(records, rules),
		}, nil
	})
}
