package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/frosttechequities/migratio-assessment-service/internal/repositories"
	"github.com/frosttechequities/migratio-assessment-service/internal/validator"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

// ImportExportService moves the question catalog in and out of spreadsheet
// files for bulk administration.
type ImportExportService interface {
	ImportQuestionsFromFile(ctx context.Context, file multipart.File, filename string, creatorID string) (*models.ImportSummary, error)
	ImportQuestionsFromCSV(ctx context.Context, reader io.Reader, creatorID string) (*models.ImportSummary, error)
	ImportQuestionsFromExcel(ctx context.Context, reader io.Reader, creatorID string) (*models.ImportSummary, error)

	ExportQuestions(ctx context.Context, req *models.ExportRequest) ([]byte, string, error)
}

// exportColumns is the canonical column order shared by import and export.
var exportColumns = []string{
	"question_id", "section", "type", "text", "help_text", "required", "order",
	"options", "min", "max", "step", "depends_on", "condition", "condition_value", "is_active",
}

type importExportService struct {
	repo      repositories.Repository
	catalog   QuestionCatalog
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, catalog QuestionCatalog, logger *slog.Logger, v *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		catalog:   catalog,
		logger:    logger,
		validator: v,
	}
}

// ===== IMPORT OPERATIONS =====

func (s *importExportService) ImportQuestionsFromFile(ctx context.Context, file multipart.File, filename string, creatorID string) (*models.ImportSummary, error) {
	s.logger.Info("Starting question import", "filename", filename, "creator_id", creatorID)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return s.ImportQuestionsFromCSV(ctx, file, creatorID)
	case ".xlsx", ".xls":
		return s.ImportQuestionsFromExcel(ctx, file, creatorID)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
}

func (s *importExportService) ImportQuestionsFromCSV(ctx context.Context, reader io.Reader, creatorID string) (*models.ImportSummary, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, NewValidationError("file", "CSV must have a header row and at least one data row", len(records))
	}

	return s.importRows(ctx, records[0], records[1:], creatorID)
}

func (s *importExportService) ImportQuestionsFromExcel(ctx context.Context, reader io.Reader, creatorID string) (*models.ImportSummary, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "Excel must have a header row and at least one data row", len(rows))
	}

	return s.importRows(ctx, rows[0], rows[1:], creatorID)
}

func (s *importExportService) importRows(ctx context.Context, headers []string, rows [][]string, creatorID string) (*models.ImportSummary, error) {
	started := time.Now()

	headerMap := make(map[string]int, len(headers))
	for i, header := range headers {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"question_id", "section", "type", "text"} {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	summary := &models.ImportSummary{TotalRows: len(rows)}
	var questions []*models.Question

	for rowIndex, row := range rows {
		question, rowErrors := s.parseRow(row, headerMap, rowIndex+2, creatorID)
		if len(rowErrors) > 0 {
			summary.Errors = append(summary.Errors, rowErrors...)
			summary.ErrorCount++
		} else if question != nil {
			questions = append(questions, question)
			summary.CreatedQuestions = append(summary.CreatedQuestions, question.QuestionID)
			summary.SuccessCount++
		}
		summary.ProcessedRows++
	}

	if len(questions) > 0 {
		if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to save imported questions: %w", err)
		}
		if s.catalog != nil {
			if err := s.catalog.Invalidate(ctx); err != nil {
				s.logger.Warn("Question cache invalidation failed after import", "error", err)
			}
		}
	}

	summary.ProcessingTime = time.Since(started)

	s.logger.Info("Question import completed",
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)

	return summary, nil
}

func (s *importExportService) parseRow(row []string, headerMap map[string]int, rowNumber int, creatorID string) (*models.Question, []models.ImportValidationError) {
	var errs []models.ImportValidationError

	cell := func(name string) string {
		index, ok := headerMap[name]
		if !ok || index >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[index])
	}

	question := &models.Question{
		QuestionID: cell("question_id"),
		Text:       cell("text"),
		Section:    models.QuizSection(cell("section")),
		Type:       models.QuestionType(cell("type")),
		Required:   parseBool(cell("required"), true),
		IsActive:   parseBool(cell("is_active"), true),
	}
	if creatorID != "" {
		question.CreatedBy = &creatorID
	}
	if help := cell("help_text"); help != "" {
		question.HelpText = &help
	}

	if orderText := cell("order"); orderText != "" {
		order, err := strconv.Atoi(orderText)
		if err != nil || order < 0 {
			errs = append(errs, models.ImportValidationError{Row: rowNumber, Field: "order", Message: "must be a non-negative integer"})
		} else {
			question.Order = order
		}
	}

	if optionsText := cell("options"); optionsText != "" {
		options, err := parseOptions(optionsText)
		if err != nil {
			errs = append(errs, models.ImportValidationError{Row: rowNumber, Field: "options", Message: err.Error()})
		} else {
			question.Options = datatypes.NewJSONSlice(options)
		}
	}

	if bounds, err := parseNumericBounds(cell("min"), cell("max"), cell("step")); err != nil {
		errs = append(errs, models.ImportValidationError{Row: rowNumber, Field: "validation", Message: err.Error()})
	} else if bounds != nil {
		v := datatypes.NewJSONType(*bounds)
		question.Validation = &v
	}

	if dependsOn := cell("depends_on"); dependsOn != "" {
		cd := models.ConditionalDisplay{
			DependsOn: dependsOn,
			Condition: models.ConditionOperator(cell("condition")),
			Value:     cell("condition_value"),
		}
		if cd.Condition == "" {
			cd.Condition = models.ConditionEquals
		}
		wrapped := datatypes.NewJSONType(cd)
		question.ConditionalDisplay = &wrapped
	}

	if err := s.validator.Validate(question); err != nil {
		errs = append(errs, models.ImportValidationError{
			Row:     rowNumber,
			Field:   "question",
			Message: err.Error(),
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return question, nil
}

// parseOptions decodes "value:label|value:label" option lists.
func parseOptions(text string) ([]models.QuestionOption, error) {
	parts := strings.Split(text, "|")
	options := make([]models.QuestionOption, 0, len(parts))
	for _, part := range parts {
		pair := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if pair[0] == "" {
			return nil, fmt.Errorf("option %q has no value", part)
		}
		option := models.QuestionOption{Value: pair[0], Label: pair[0]}
		if len(pair) == 2 && pair[1] != "" {
			option.Label = pair[1]
		}
		options = append(options, option)
	}
	return options, nil
}

func parseNumericBounds(minText, maxText, stepText string) (*models.NumericValidation, error) {
	if minText == "" && maxText == "" && stepText == "" {
		return nil, nil
	}
	bounds := &models.NumericValidation{}
	for _, field := range []struct {
		text string
		dest **float64
		name string
	}{
		{minText, &bounds.Min, "min"},
		{maxText, &bounds.Max, "max"},
		{stepText, &bounds.Step, "step"},
	} {
		if field.text == "" {
			continue
		}
		value, err := strconv.ParseFloat(field.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be numeric", field.name)
		}
		*field.dest = &value
	}
	if bounds.Min != nil && bounds.Max != nil && *bounds.Min > *bounds.Max {
		return nil, fmt.Errorf("min must not exceed max")
	}
	return bounds, nil
}

func parseBool(text string, fallback bool) bool {
	switch strings.ToLower(text) {
	case "":
		return fallback
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

// ===== EXPORT OPERATIONS =====

func (s *importExportService) ExportQuestions(ctx context.Context, req *models.ExportRequest) ([]byte, string, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	filters := repositories.QuestionFilters{
		Section:   req.Section,
		SortBy:    "order",
		SortOrder: "asc",
	}
	if req.ActiveOnly {
		active := true
		filters.IsActive = &active
	}

	questions, _, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load questions for export: %w", err)
	}

	rows := make([][]string, 0, len(questions))
	for _, question := range questions {
		rows = append(rows, exportRow(question))
	}

	switch req.Format {
	case "csv":
		data, err := writeCSV(rows)
		return data, "questions.csv", err
	default:
		data, err := writeExcel(rows)
		return data, "questions.xlsx", err
	}
}

func exportRow(q *models.Question) []string {
	helpText := ""
	if q.HelpText != nil {
		helpText = *q.HelpText
	}

	optionParts := make([]string, 0, len(q.Options))
	for _, option := range q.Options {
		optionParts = append(optionParts, option.Value+":"+option.Label)
	}

	min, max, step := "", "", ""
	if q.Validation != nil {
		bounds := q.Validation.Data()
		min = formatFloat(bounds.Min)
		max = formatFloat(bounds.Max)
		step = formatFloat(bounds.Step)
	}

	dependsOn, condition, conditionValue := "", "", ""
	if cd := q.Conditional(); cd != nil {
		dependsOn = cd.DependsOn
		condition = string(cd.Condition)
		conditionValue = stringify(cd.Value)
	}

	return []string{
		q.QuestionID,
		string(q.Section),
		string(q.Type),
		q.Text,
		helpText,
		strconv.FormatBool(q.Required),
		strconv.Itoa(q.Order),
		strings.Join(optionParts, "|"),
		min,
		max,
		step,
		dependsOn,
		condition,
		conditionValue,
		strconv.FormatBool(q.IsActive),
	}
}

func formatFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeExcel(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Questions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	writeRow := func(rowNumber int, values []string) error {
		for colIndex, value := range values {
			cellName, err := excelize.CoordinatesToCellName(colIndex+1, rowNumber)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cellName, value); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, exportColumns); err != nil {
		return nil, fmt.Errorf("failed to write Excel header: %w", err)
	}
	for i, row := range rows {
		if err := writeRow(i+2, row); err != nil {
			return nil, fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
