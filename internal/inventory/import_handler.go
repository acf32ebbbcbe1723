package inventory

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"cokhi-backend/internal/audit"
	"cokhi-backend/internal/database"
	"cokhi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ImportResultResponse struct {
	Created int      `json:"created"` // vật liệu mới
	Updated int      `json:"updated"` // vật liệu trùng tên, cộng thêm tồn
	Skipped []string `json:"skipped"` // các dòng bỏ qua kèm lý do
}

// materialRow - một dòng hợp lệ từ file import
type materialRow struct {
	Name  string
	Unit  string
	Stock float64
}

// parseMaterialRows đọc các dòng xlsx (cột: tên, đơn vị, tồn kho) thành
// danh sách vật liệu. Trả về kèm danh sách dòng bị bỏ qua và lý do.
func parseMaterialRows(rows [][]string) ([]materialRow, []string) {
	parsed := make([]materialRow, 0, len(rows))
	skipped := make([]string, 0)

	startIndex := 0
	// Dòng đầu là tiêu đề thì bỏ qua
	if len(rows) > 0 && len(rows[0]) > 0 {
		firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
		if strings.Contains(firstCell, "TÊN") || strings.Contains(firstCell, "VẬT LIỆU") ||
			strings.Contains(firstCell, "NAME") || strings.Contains(firstCell, "MATERIAL") {
			startIndex = 1
		}
	}

	seen := make(map[string]bool)
	for i := startIndex; i < len(rows); i++ {
		row := rows[i]
		rowNo := i + 1

		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		name := strings.TrimSpace(row[0])
		if seen[strings.ToLower(name)] {
			skipped = append(skipped, fmt.Sprintf("dòng %d: tên '%s' bị lặp trong file", rowNo, name))
			continue
		}

		if len(row) < 2 || strings.TrimSpace(row[1]) == "" {
			skipped = append(skipped, fmt.Sprintf("dòng %d: thiếu đơn vị tính", rowNo))
			continue
		}
		unit := strings.TrimSpace(row[1])

		stock := 0.0
		if len(row) >= 3 && strings.TrimSpace(row[2]) != "" {
			raw := strings.ReplaceAll(strings.TrimSpace(row[2]), ",", ".")
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				skipped = append(skipped, fmt.Sprintf("dòng %d: tồn kho '%s' không phải số", rowNo, row[2]))
				continue
			}
			if v < 0 {
				skipped = append(skipped, fmt.Sprintf("dòng %d: tồn kho âm", rowNo))
				continue
			}
			stock = v
		}

		seen[strings.ToLower(name)] = true
		parsed = append(parsed, materialRow{Name: name, Unit: unit, Stock: stock})
	}

	return parsed, skipped
}

// POST /api/materials/import
// Nhận file .xlsx (cột: tên vật liệu, đơn vị, tồn kho), tạo vật liệu mới
// hoặc cộng tồn cho vật liệu trùng tên
func ImportMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Không nhận được file: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Chỉ nhận file .xlsx")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không mở được file: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Không đọc được file Excel: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "File Excel không có sheet nào")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Không đọc được sheet: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "File Excel rỗng")
		}

		parsed, skipped := parseMaterialRows(rows)
		result := ImportResultResponse{Skipped: skipped}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for _, row := range parsed {
				var existing models.Material
				findErr := tx.Where("name = ?", row.Name).First(&existing).Error
				if findErr == nil {
					// Trùng tên: cộng thêm tồn, giữ đơn vị cũ
					if row.Stock > 0 {
						if err := tx.Model(&existing).
							Update("current_stock", gorm.Expr("current_stock + ?", row.Stock)).Error; err != nil {
							return err
						}
					}
					result.Updated++
					continue
				}

				m := models.Material{Name: row.Name, Unit: row.Unit, CurrentStock: row.Stock}
				if err := tx.Create(&m).Error; err != nil {
					return err
				}
				result.Created++
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không lưu được dữ liệu import")
		}

		// Ghi audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:     userID,
				UserName:   userName,
				EntityType: "material",
				Action:     models.AuditActionCreate,
				Description: fmt.Sprintf("Import vật liệu từ file %s: %d tạo mới, %d cộng tồn, %d dòng bỏ qua",
					fileHeader.Filename, result.Created, result.Updated, len(result.Skipped)),
				After: result,
			}); logErr != nil {
				log.Printf("Không ghi được audit log: %v", logErr)
			}
		}

		return c.JSON(result)
	}
}
