package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/ummalqura-api/internal/config"
	"github.com/zapponejosh/ummalqura-api/internal/database"
	"github.com/zapponejosh/ummalqura-api/internal/feed"
	"github.com/zapponejosh/ummalqura-api/internal/gregorian"
	"github.com/zapponejosh/ummalqura-api/internal/hijri"
	"github.com/zapponejosh/ummalqura-api/internal/logger"
	"github.com/zapponejosh/ummalqura-api/internal/metrics"
)

// maxTableBytes bounds an uploaded properties table.
const maxTableBytes = 1 << 20

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	conv    *hijri.Converter
	db      *database.DB // nil when no table store is configured
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(conv *hijri.Converter, db *database.DB, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *Handlers {
	return &Handlers{
		conv:    conv,
		db:      db,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.db != nil {
		if err := h.db.Health(ctx); err != nil {
			h.log(r).Warn("health check failed", slog.Any("error", err))
			WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", CodeHealthCheck)
			return
		}
	}

	WriteSuccess(w, map[string]string{
		"status":        "healthy",
		"table_version": h.conv.Table().Version,
	})
}

// GetToday handles GET /api/v1/hijri/today
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	today := gregorian.FromTime(h.now().In(h.cfg.Location()))
	h.writeConversion(w, r, today)
}

// GetDate handles GET /api/v1/hijri/date/{YYYY-MM-DD}
func (h *Handlers) GetDate(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")
	if dateStr == "" {
		WriteBadRequest(w, "Date parameter is required")
		return
	}

	date, err := gregorian.ParseDate(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date: %s. Use YYYY-MM-DD", dateStr))
		return
	}

	h.writeConversion(w, r, date)
}

// GetRange handles GET /api/v1/hijri/range?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handlers) GetRange(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" || endStr == "" {
		WriteBadRequest(w, "Both start and end date parameters are required")
		return
	}

	startDate, err := gregorian.ParseDate(startStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid start date: %s. Use YYYY-MM-DD", startStr))
		return
	}

	endDate, err := gregorian.ParseDate(endStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid end date: %s. Use YYYY-MM-DD", endStr))
		return
	}

	start, end := startDate.EpochDay(), endDate.EpochDay()
	if start > end {
		WriteBadRequest(w, "Start date must be before or equal to end date")
		return
	}

	if days := int64(end-start) + 1; days > int64(h.cfg.MaxRangeDays) {
		WriteBadRequest(w, fmt.Sprintf("Date range cannot exceed %d days", h.cfg.MaxRangeDays))
		return
	}

	names := namesFor(r)
	results := make([]ConversionResponse, 0, int(end-start)+1)
	for day := start; day <= end; day++ {
		date := gregorian.DateFromDay(day)
		resp, err := h.convert(date, names)
		if err != nil {
			h.writeConversionError(w, r, err)
			return
		}
		results = append(results, resp)
	}

	WriteSuccess(w, RangeResponse{
		Start: startDate.String(),
		End:   endDate.String(),
		Count: len(results),
		Days:  results,
	})
}

// GetGregorian handles GET /api/v1/gregorian/{year}/{month}/{day}. The month
// in the URL is 1-based.
func (h *Handlers) GetGregorian(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	month, err := intParam(r, "month")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	day, err := intParam(r, "day")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if month < 1 || month > 12 {
		WriteOutOfRange(w, fmt.Sprintf("month %d is outside 1-12", month))
		return
	}

	fields, err := h.conv.ToGregorian(year, month-1, day)
	h.observe(metrics.ToGregorian, err)
	if err != nil {
		h.writeConversionError(w, r, err)
		return
	}

	date := fields.Date()
	hd := hijri.Date{Year: year, Month: hijri.Month(month - 1), Day: day}
	length, err := h.conv.DaysInMonth(year, month)
	if err != nil {
		h.writeConversionError(w, r, err)
		return
	}

	WriteSuccess(w, ConversionResponse{
		Gregorian: date.String(),
		Weekday:   date.Weekday().String(),
		Hijri:     newHijriDate(hd, length, namesFor(r)),
	})
}

// GetYear handles GET /api/v1/years/{year}
func (h *Handlers) GetYear(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	length, err := h.conv.DaysInYear(year)
	if err != nil {
		h.writeConversionError(w, r, err)
		return
	}

	names := namesFor(r)
	months := make([]MonthResponse, 0, 12)
	for m := hijri.Muharram; m <= hijri.ThulHijjah; m++ {
		days, err := h.conv.DaysInMonth(year, int(m)+1)
		if err != nil {
			h.writeConversionError(w, r, err)
			return
		}
		first, err := h.conv.HijriToGregorian(hijri.Date{Year: year, Month: m, Day: 1})
		if err != nil {
			h.writeConversionError(w, r, err)
			return
		}
		months = append(months, MonthResponse{
			Month:      int(m) + 1,
			MonthIndex: int(m),
			Name:       names.Name(m),
			Days:       days,
			Start:      first.String(),
			End:        first.AddDays(days - 1).String(),
		})
	}

	WriteSuccess(w, YearResponse{
		Year:   year,
		Days:   length,
		Leap:   h.conv.IsLeapYear(year),
		Months: months,
	})
}

// GetCalendarInfo handles GET /api/v1/calendar
func (h *Handlers) GetCalendarInfo(w http.ResponseWriter, r *http.Request) {
	t := h.conv.Table()
	chrono := h.conv.Chronology()
	first, last := h.conv.Bounds()

	WriteSuccess(w, CalendarInfoResponse{
		Version:        t.Version,
		ID:             t.ID,
		Type:           t.Type,
		ISOStart:       t.ISOStart.String(),
		MinYear:        h.conv.MinimumYear(),
		MaxYear:        h.conv.MaximumYear(),
		FirstDate:      first.String(),
		LastDate:       last.String(),
		MinMonthLength: chrono.MinMonthLength(),
		MaxMonthLength: chrono.MaxMonthLength(),
		MinYearLength:  chrono.MinYearLength(),
		MaxYearLength:  chrono.MaxYearLength(),
		Checksum:       t.Checksum(),
	})
}

// GetCalendarFeed handles GET /api/v1/calendar/{year}.ics?to={year}
func (h *Handlers) GetCalendarFeed(w http.ResponseWriter, r *http.Request) {
	from, err := intParam(r, "year")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	to := from
	if s := r.URL.Query().Get("to"); s != "" {
		to, err = strconv.Atoi(s)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid to year: %s", s))
			return
		}
	}
	if to < from {
		WriteBadRequest(w, fmt.Sprintf("Year range must be ascending and at most %d years", feed.MaxYears))
		return
	}
	// Bounds first so the span below cannot overflow.
	for _, y := range []int{from, to} {
		if y < h.conv.MinimumYear() || y > h.conv.MaximumYear() {
			h.writeConversionError(w, r, &hijri.RangeError{Field: hijri.FieldNameYear, Value: int64(y)})
			return
		}
	}
	if to-from+1 > feed.MaxYears {
		WriteBadRequest(w, fmt.Sprintf("Year range must be ascending and at most %d years", feed.MaxYears))
		return
	}

	cal, err := feed.Years(h.conv, from, to, namesFor(r), h.now())
	if err != nil {
		h.writeConversionError(w, r, err)
		return
	}

	// Encode first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := feed.Encode(&buf, cal); err != nil {
		h.writeConversionError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", chi.URLParam(r, "year")+".ics"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ListTables handles GET /api/v1/admin/tables
func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		WriteError(w, http.StatusServiceUnavailable, "Table store is not configured", CodeStoreUnavailable)
		return
	}

	tables, err := h.db.ListTables(r.Context())
	if err != nil {
		h.log(r).Error("failed to list tables", slog.Any("error", err))
		WriteInternalError(w, "Failed to list tables")
		return
	}
	if tables == nil {
		tables = []database.TableRecord{}
	}

	WriteSuccess(w, TableListResponse{
		Active: h.conv.Table().Version,
		Tables: tables,
	})
}

// ImportTable handles POST /api/v1/admin/tables. The body is a properties
// table; it is stored only if a converter can be built from it.
func (h *Handlers) ImportTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.db == nil {
		WriteError(w, http.StatusServiceUnavailable, "Table store is not configured", CodeStoreUnavailable)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTableBytes))
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Table body too large or unreadable (limit %d bytes)", maxTableBytes))
		return
	}

	t, err := hijri.ParseTable(bytes.NewReader(body))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidTable)
		return
	}
	if _, err := hijri.New(t); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidTable)
		return
	}

	rec, err := h.db.SaveTable(ctx, t, "api")
	if errors.Is(err, database.ErrDuplicate) {
		WriteConflict(w, fmt.Sprintf("Table version %q already exists", t.Version))
		return
	}
	if err != nil {
		h.log(r).Error("failed to store table", slog.Any("error", err), slog.String("version", t.Version))
		WriteInternalError(w, "Failed to store table")
		return
	}

	h.log(r).Info("table imported",
		slog.String("version", rec.Version),
		slog.Int("min_year", rec.MinYear),
		slog.Int("max_year", rec.MaxYear),
	)
	WriteCreated(w, rec)
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handlers) writeConversion(w http.ResponseWriter, r *http.Request, date gregorian.Date) {
	resp, err := h.convert(date, namesFor(r))
	if err != nil {
		h.writeConversionError(w, r, err)
		return
	}
	WriteSuccess(w, resp)
}

func (h *Handlers) convert(date gregorian.Date, names hijri.MonthNames) (ConversionResponse, error) {
	hd, err := h.conv.GregorianToHijri(date)
	h.observe(metrics.ToHijri, err)
	if err != nil {
		return ConversionResponse{}, err
	}
	length, err := h.conv.DaysInMonth(hd.Year, int(hd.Month)+1)
	if err != nil {
		return ConversionResponse{}, err
	}
	return ConversionResponse{
		Gregorian: date.String(),
		Weekday:   date.Weekday().String(),
		Hijri:     newHijriDate(hd, length, names),
	}, nil
}

func (h *Handlers) observe(direction string, err error) {
	if h.metrics != nil {
		h.metrics.ObserveConversion(direction, err)
	}
}

// writeConversionError maps range errors to 400 and everything else to 500.
func (h *Handlers) writeConversionError(w http.ResponseWriter, r *http.Request, err error) {
	var re *hijri.RangeError
	if errors.As(err, &re) {
		first, last := h.conv.Bounds()
		WriteOutOfRange(w, fmt.Sprintf("%s %d is outside the supported calendar (%s to %s, %d-%d AH)",
			re.Field, re.Value, first, last, h.conv.MinimumYear(), h.conv.MaximumYear()))
		return
	}
	h.log(r).Error("conversion failed", slog.Any("error", err), slog.String("path", r.URL.Path))
	WriteInternalError(w, "Conversion failed")
}

// log tags the handler logger with the request ID.
func (h *Handlers) log(r *http.Request) *slog.Logger {
	return logger.FromContextWith(r.Context(), h.logger)
}

func intParam(r *http.Request, name string) (int, error) {
	s := chi.URLParam(r, name)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("Invalid %s: %q", name, s)
	}
	return v, nil
}

func namesFor(r *http.Request) hijri.MonthNames {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return hijri.NamesForHeader(lang)
	}
	return hijri.NamesForHeader(r.Header.Get("Accept-Language"))
}
