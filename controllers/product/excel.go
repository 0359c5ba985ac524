package productcontroller

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/buzcart/buzcart-api/cache"
	"github.com/buzcart/buzcart-api/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

type ImportResult struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

// ImportCatalogSheet upserts products from the first sheet, using the export
// column layout. Rows with an existing ID update that product under a row
// lock; rows without one create a product. Bad rows are skipped.
func ImportCatalogSheet(db *gorm.DB, file *xlsx.File) (ImportResult, []uuid.UUID, error) {
	var result ImportResult
	var touched []uuid.UUID

	if len(file.Sheets) == 0 || file.Sheets[0].MaxRow < 2 {
		return result, nil, models.NewValidationError("file", "Excel file is empty or missing header row.", "invalid")
	}
	sheet := file.Sheets[0]

	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if row != nil && index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		sellerID, errSeller := uuid.Parse(get(1))
		name := get(2)
		price, errPrice := decimal.NewFromString(get(5))
		quantity, errQty := strconv.Atoi(get(6))
		if name == "" || errSeller != nil || errPrice != nil || !price.IsPositive() || models.CheckMoney("price", price) != nil || errQty != nil || quantity < 0 {
			result.Skipped++
			continue
		}

		product := models.Product{
			SellerID:    sellerID,
			Name:        name,
			Description: get(3),
			Image:       get(4),
			Price:       price,
			Quantity:    quantity,
		}

		if id, err := uuid.Parse(get(0)); err == nil {
			err := db.Transaction(func(tx *gorm.DB) error {
				existing, err := models.LockProduct(tx, id)
				if err != nil {
					return err
				}
				existing.SellerID = product.SellerID
				existing.Name = product.Name
				existing.Description = product.Description
				existing.Image = product.Image
				existing.Price = product.Price
				existing.Quantity = product.Quantity
				return tx.Save(existing).Error
			})
			if err == nil {
				result.Updated++
				touched = append(touched, id)
				continue
			}
			if !errors.Is(err, models.ErrNotFound) {
				result.Skipped++
				continue
			}
			product.ID = id
		}

		if err := db.Create(&product).Error; err != nil {
			result.Skipped++
			continue
		}
		result.Created++
	}
	return result, touched, nil
}

func ImportProductsFromExcel(db *gorm.DB, products cache.ProductCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		result, touched, err := ImportCatalogSheet(db, xlFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := products.Invalidate(c.Request.Context(), touched...); err != nil {
			log.Printf("⚠️ Failed to invalidate imported products: %v", err)
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": result.Created,
			"updated_count": result.Updated,
			"skipped_count": result.Skipped,
		})
	}
}
