package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/repository"
	"github.com/wali1264/mihangps/utils"
)

// ReportService aggregates filtered contract data for the reports screen
// and produces the spreadsheet-safe CSV export.
type ReportService struct {
	contracts repository.ContractRepositoryInterface
	clients   repository.ClientRepositoryInterface
	users     repository.UserRepositoryInterface
}

// NewReportService creates a ReportService
func NewReportService(
	contracts repository.ContractRepositoryInterface,
	clients repository.ClientRepositoryInterface,
	users repository.UserRepositoryInterface,
) *ReportService {
	return &ReportService{
		contracts: contracts,
		clients:   clients,
		users:     users,
	}
}

// Stats summarizes a filtered contract set
func (s *ReportService) Stats(contracts []models.Contract) models.ReportStats {
	stats := models.ReportStats{Total: len(contracts)}
	for _, c := range contracts {
		if c.IsExtended {
			stats.ExtendedCount++
		} else {
			stats.MainCount++
		}
	}
	return stats
}

// ListContracts applies the report filter
func (s *ReportService) ListContracts(ctx context.Context, filter repository.ReportFilter) ([]models.Contract, error) {
	return s.contracts.ListForReport(ctx, filter)
}

// BuildCSV exports the filtered contracts as a UTF-8-BOM CSV whose dynamic
// columns come from the template's field labels. Number-like columns (plate,
// phone) and every dynamic value are wrapped in the ="..." text formula so
// spreadsheets never mangle them. Returns the file bytes and filename.
func (s *ReportService) BuildCSV(ctx context.Context, tpl *models.ContractTemplate, filter repository.ReportFilter) ([]byte, string, error) {
	contracts, err := s.contracts.ListForReport(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load contracts for report: %w", err)
	}
	if len(contracts) == 0 {
		return nil, "", fmt.Errorf("no contracts match the report filter")
	}

	clients, err := s.clients.List(ctx, "")
	if err != nil {
		log.Printf("⚠️  Report continues without client details: %v", err)
	}
	clientByID := make(map[string]models.ClientProfile, len(clients))
	for _, c := range clients {
		clientByID[c.ID] = c
	}

	employees, err := s.users.ListEmployees(ctx)
	if err != nil {
		log.Printf("⚠️  Report continues without employee names: %v", err)
	}
	employeeByID := make(map[string]models.User, len(employees))
	for _, e := range employees {
		employeeByID[e.ID] = e
	}

	// Field labels per key, across all template pages
	fieldLabels := make(map[string]string)
	for _, p := range tpl.Pages {
		for _, f := range p.Fields {
			fieldLabels[f.Key] = f.Label
		}
	}

	// Dynamic columns follow the template's field order; keys present only
	// in historical form data (orphaned by template edits) come after, sorted
	used := make(map[string]bool)
	for _, c := range contracts {
		for k := range c.FormData {
			used[k] = true
		}
	}
	var dynamicKeys []string
	seen := make(map[string]bool)
	for _, p := range tpl.Pages {
		for _, f := range p.Fields {
			if used[f.Key] && !seen[f.Key] {
				seen[f.Key] = true
				dynamicKeys = append(dynamicKeys, f.Key)
			}
		}
	}
	var orphaned []string
	for k := range used {
		if !seen[k] {
			orphaned = append(orphaned, k)
		}
	}
	sort.Strings(orphaned)
	dynamicKeys = append(dynamicKeys, orphaned...)

	// Duplicate labels get the field key appended so columns stay distinct
	headerCounts := make(map[string]int)
	headers := []string{"ردیف", "تاریخ ثبت", "نام مشتری", "نام پدر", "شماره پلاک", "شماره تماس", "نوع خدمات", "کارمند ثبت‌کننده"}
	for _, k := range dynamicKeys {
		label := fieldLabels[k]
		if label == "" {
			label = "فیلد پویا"
		}
		headerCounts[label]++
		if headerCounts[label] > 1 {
			label = fmt.Sprintf("%s (%s)", label, strings.TrimPrefix(k, "f_"))
		}
		headers = append(headers, label)
	}

	rows := make([][]string, 0, len(contracts))
	for i, c := range contracts {
		client := clientByID[c.ClientID]
		fatherName := client.FatherName
		if fatherName == "" {
			fatherName = "---"
		}
		plate := client.Tazkira
		if plate == "" {
			plate = "---"
		}
		phone := client.Phone
		if phone == "" {
			phone = "---"
		}

		serviceType := "اصلی"
		if c.IsExtended {
			serviceType = "تمدیدی"
		}

		employeeName := "مدیر سیستم"
		if e, ok := employeeByID[c.AssignedTo]; ok {
			employeeName = e.Username
		}

		row := []string{
			strconv.Itoa(i + 1),
			c.Timestamp.Format("2006/01/02"),
			c.ClientName,
			fatherName,
			utils.ForceText(plate),
			utils.ForceText(phone),
			serviceType,
			employeeName,
		}
		for _, k := range dynamicKeys {
			row = append(row, utils.ForceText(c.FormData[k]))
		}
		rows = append(rows, row)
	}

	filename := fmt.Sprintf("گزارش_میهن_GPS_%s.csv", time.Now().Format("2006-01-02"))
	log.Printf("📊 CSV report generated: %d contracts, %d dynamic columns", len(contracts), len(dynamicKeys))
	return utils.BuildCSV(headers, rows), filename, nil
}
