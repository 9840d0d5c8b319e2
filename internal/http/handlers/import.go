package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ticketgate/backend/internal/models"
)

type ImportSummary struct {
	Parsed   int      `json:"parsed"`
	Inserted int64    `json:"inserted"`
	Errors   []string `json:"errors"`
}

// @Summary Import projects from CSV
// @Description Columns: client_name, service_type (LINE|MEO), description, optional id
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Param projects formData file true "projects.csv"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/projects/import [post]
func (h *Handler) ImportProjects(c *gin.Context) {
	file, err := c.FormFile("projects")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "projects file required", nil)
		return
	}
	if !validateExt(file.Filename) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file must be .csv", nil)
		return
	}

	projects, errs := parseProjectsCSV(file)
	summary := ImportSummary{Parsed: len(projects), Errors: errs}
	if len(errs) > 0 {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "CSV validation errors", errs)
		return
	}

	n, err := h.Projects.InsertProjects(c.Request.Context(), projects)
	if err != nil {
		h.logError(c, err)
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert projects", err.Error())
		return
	}
	summary.Inserted = n
	h.Logger.Info().Int("parsed", summary.Parsed).Int64("inserted", n).Msg("projects imported")
	c.JSON(http.StatusOK, summary)
}

func parseProjectsCSV(file *multipart.FileHeader) ([]models.Project, []string) {
	f, err := file.Open()
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer f.Close()
	return readProjectsCSV(f)
}

func readProjectsCSV(r io.Reader) ([]models.Project, []string) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, []string{"failed to read header"}
	}
	index := headerIndex(headers)
	errs := []string{}
	var out []models.Project

	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}

		id := getFieldAny(rec, index, "id", "project_id")
		name := getFieldAny(rec, index, "client_name", "client", "顧客名", "クライアント名")
		serviceType := models.ServiceType(strings.ToUpper(getFieldAny(rec, index, "service_type", "service", "サービス")))
		desc := getFieldAny(rec, index, "description", "説明", "備考")

		if name == "" {
			errs = append(errs, fmt.Sprintf("line %d: client_name is required", line))
			continue
		}
		if !serviceType.Valid() {
			errs = append(errs, fmt.Sprintf("line %d: service_type must be LINE or MEO", line))
			continue
		}
		if id != "" {
			if _, err := uuid.Parse(id); err != nil {
				errs = append(errs, fmt.Sprintf("line %d: id is not a uuid", line))
				continue
			}
		}

		p := models.Project{ID: id, ClientName: name, ServiceType: serviceType}
		if desc != "" {
			p.Description = &desc
		}
		out = append(out, p)
	}
	return out, errs
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}

func validateExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv"
}
