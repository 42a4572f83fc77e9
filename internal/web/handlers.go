package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vendasapp/sales-import/internal/entity"
	"github.com/vendasapp/sales-import/internal/jobs"
	"github.com/vendasapp/sales-import/internal/logging"
	"github.com/vendasapp/sales-import/internal/repository"
)

// importJSON is the API representation of an import.
type importJSON struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	Revenue    float64   `json:"revenue"`
	SalesCount int       `json:"sales_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// saleJSON is the API representation of a transaction record.
type saleJSON struct {
	ID              string  `json:"id"`
	Purchaser       string  `json:"purchaser"`
	Item            string  `json:"item"`
	Merchant        string  `json:"merchant"`
	MerchantAddress string  `json:"merchant_address"`
	Quantity        int     `json:"quantity"`
	UnitPriceCents  int64   `json:"unit_price_cents"`
	GrossCents      int64   `json:"gross_cents"`
	GrossRevenue    float64 `json:"gross_revenue"`
}

func toImportJSON(imp entity.Import, salesCount int) importJSON {
	return importJSON{
		ID:         imp.ID.String(),
		Filename:   imp.Filename,
		Status:     imp.Status.String(),
		TotalCents: imp.TotalCents,
		Revenue:    imp.Revenue(),
		SalesCount: salesCount,
		CreatedAt:  imp.CreatedAt,
	}
}

// handleCreateImport accepts a multipart sales file, stores it, creates a
// pending import and enqueues it for processing. Responds 202 with the
// import id; processing state is polled via GET /api/imports/{id}.
func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Uploads.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("missing file field: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	storedPath, err := s.storeUpload(file, header.Filename)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	imp, err := s.imports.Create(r.Context(), header.Filename, storedPath)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	job := &jobs.ProcessImportJob{ImportID: imp.ID}
	if err := s.publisher.PublishProcessImport(r.Context(), job); err != nil {
		s.respondError(w, r, fmt.Errorf("enqueue import: %w", err), http.StatusServiceUnavailable)
		return
	}

	logging.FromContext(r.Context()).Info("import accepted",
		"import_id", imp.ID, "filename", imp.Filename)
	respondJSON(w, http.StatusAccepted, toImportJSON(*imp, 0))
}

// storeUpload writes the uploaded file under the uploads directory with a
// unique name, keeping the original extension.
func (s *Server) storeUpload(src io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(s.cfg.Uploads.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	name := uuid.New().String() + filepath.Ext(originalName)
	path := filepath.Join(s.cfg.Uploads.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("store upload: %w", err)
	}
	return path, nil
}

// handleListImports returns the import history, newest first.
// Query params: page (1-based, default 1), per_page (default 20, max 100).
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	summaries, err := s.imports.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	out := make([]importJSON, len(summaries))
	for i, sum := range summaries {
		out[i] = toImportJSON(sum.Import, sum.SalesCount)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"imports":  out,
		"page":     page,
		"per_page": perPage,
	})
}

// handleGetImport returns one import with its sales.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, errors.New("invalid import id"), http.StatusBadRequest)
		return
	}

	imp, err := s.imports.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	records, err := s.sales.ListByImport(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	sales := make([]saleJSON, len(records))
	for i, rec := range records {
		sales[i] = saleJSON{
			ID:              rec.ID.String(),
			Purchaser:       rec.PurchaserName,
			Item:            rec.ItemDescription,
			Merchant:        rec.MerchantName,
			MerchantAddress: rec.MerchantAddress,
			Quantity:        rec.Quantity,
			UnitPriceCents:  rec.UnitPriceCents,
			GrossCents:      rec.GrossCents,
			GrossRevenue:    float64(rec.GrossCents) / 100.0,
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"import": toImportJSON(*imp, len(records)),
		"sales":  sales,
	})
}

// handleDeleteImport removes an import and, via the cascading foreign key,
// its transaction records. Purchasers, items and merchants are shared across
// imports and stay untouched.
func (s *Server) handleDeleteImport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, errors.New("invalid import id"), http.StatusBadRequest)
		return
	}

	if err := s.imports.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportImport streams the import's sales as an XLSX workbook.
func (s *Server) handleExportImport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, errors.New("invalid import id"), http.StatusBadRequest)
		return
	}

	data, err := s.exporter.ExportImportXLSX(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "sales-import-"+id.String()+".xlsx"))
	_, _ = w.Write(data)
}

// handleDashboard reports revenue across completed imports: the most recent
// completed import's gross income, the all-time total and recent history.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.imports.Dashboard(r.Context(), 5)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	recent := make([]importJSON, len(stats.Recent))
	for i, sum := range stats.Recent {
		recent[i] = toImportJSON(sum.Import, sum.SalesCount)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"last_gross_income_cents":  stats.LastGrossCents,
		"last_gross_income":        float64(stats.LastGrossCents) / 100.0,
		"total_gross_income_cents": stats.TotalGrossCents,
		"total_gross_income":       float64(stats.TotalGrossCents) / 100.0,
		"recent_imports":           recent,
	})
}

// sampleFile is a small well-formed sales file demonstrating the expected
// tab-separated layout.
const sampleFile = "purchaser_name\titem_description\titem_price\tpurchase_count\tmerchant_address\tmerchant_name\n" +
	"João Silva\tPepperoni Pizza Slice\t3.50\t4\t987 Fake St\tBob's Pizza\n" +
	"Amy Pond\tCute T-Shirt\t10.25\t2\t456 Unreal Rd\tTom's Awesome Shop\n" +
	"Marty McFly\tCool Sneakers\t52.75\t1\t123 Fake St\tSneaker Store Emporium\n" +
	"Snake Plissken\tCute T-Shirt\t10.75\t1\t456 Unreal Rd\tTom's Awesome Shop\n" +
	"Amy Pond\tPepperoni Pizza Slice\t0.99\t5\t987 Fake St\tBob's Pizza\n"

// handleSampleFile serves a downloadable example import file.
func (s *Server) handleSampleFile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sample_sales.tab"`)
	_, _ = w.Write([]byte(sampleFile))
}

// handleHealth pings the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := repository.HealthCheck(r.Context(), s.pool, 2*time.Second); err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
