// Package ledger chứa phần tính toán thuần của hệ thống: tiền hàng,
// đối soát thanh toán - công nợ và kiểm tra đủ vật liệu. Không truy cập
// database, không side effect; caller truyền snapshot vào và tự lưu kết quả.
package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound - entity được tham chiếu không tồn tại
	ErrNotFound = errors.New("không tìm thấy dữ liệu")

	// ErrConcurrencyConflict - snapshot đã cũ, phát hiện khi ghi (version không khớp)
	ErrConcurrencyConflict = errors.New("dữ liệu đã bị thay đổi bởi thao tác khác, vui lòng tải lại")

	// ErrOrderCancelled - đơn đã hủy là trạng thái cuối, không thao tác tiếp được
	ErrOrderCancelled = errors.New("đơn hàng đã hủy, không thể thao tác")
)

// ValidationError - dữ liệu vào sai hoặc ngoài phạm vi, caller sửa rồi gọi lại
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// OverpaymentError - tổng thanh toán sẽ vượt tổng tiền đơn hàng.
// MaxAllowed là số tối đa còn được phép thu, trả về cho người vận hành.
type OverpaymentError struct {
	Attempted  float64
	MaxAllowed float64
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("số tiền %.0f vượt quá số còn lại của đơn (tối đa %.0f)", e.Attempted, e.MaxAllowed)
}
