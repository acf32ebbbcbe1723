package ledger

// LineTotals - kết quả tính một dòng hàng
type LineTotals struct {
	TotalPrice float64 // Quantity*UnitPrice - Discount, không âm
	TotalCost  float64 // Quantity*UnitCost
	Profit     float64 // TotalPrice - TotalCost, âm nghĩa là dòng lỗ (không phải lỗi)
}

// ComputeLine tính tiền cho một dòng hàng của đơn.
func ComputeLine(quantity, unitPrice, unitCost, discount float64) (LineTotals, error) {
	if quantity <= 0 {
		return LineTotals{}, &ValidationError{Field: "quantity", Message: "số lượng phải lớn hơn 0"}
	}
	if unitPrice < 0 {
		return LineTotals{}, &ValidationError{Field: "unit_price", Message: "đơn giá không được âm"}
	}
	if unitCost < 0 {
		return LineTotals{}, &ValidationError{Field: "unit_cost", Message: "giá vốn không được âm"}
	}
	if discount < 0 {
		return LineTotals{}, &ValidationError{Field: "discount", Message: "giảm giá không được âm"}
	}
	if discount > quantity*unitPrice {
		return LineTotals{}, &ValidationError{Field: "discount", Message: "giảm giá không được vượt thành tiền của dòng"}
	}

	totalPrice := quantity*unitPrice - discount
	if totalPrice < 0 {
		totalPrice = 0
	}
	totalCost := quantity * unitCost

	return LineTotals{
		TotalPrice: totalPrice,
		TotalCost:  totalCost,
		Profit:     totalPrice - totalCost,
	}, nil
}
