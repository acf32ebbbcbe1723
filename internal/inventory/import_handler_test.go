package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaterialRows(t *testing.T) {
	rows := [][]string{
		{"TÊN VẬT LIỆU", "ĐƠN VỊ", "TỒN KHO"},
		{"Thép hộp 40x40", "kg", "120"},
		{"Sơn chống gỉ", "lít", "8,5"}, // dấu phẩy thập phân kiểu VN
		{"Que hàn", "kg", ""},          // không có tồn: mặc định 0
	}

	parsed, skipped := parseMaterialRows(rows)
	require.Len(t, parsed, 3)
	assert.Empty(t, skipped)

	assert.Equal(t, materialRow{Name: "Thép hộp 40x40", Unit: "kg", Stock: 120}, parsed[0])
	assert.Equal(t, 8.5, parsed[1].Stock)
	assert.Equal(t, 0.0, parsed[2].Stock)
}

func TestParseMaterialRows_SkipsBadRows(t *testing.T) {
	rows := [][]string{
		{"Thép tấm", "kg", "50"},
		{"Thép tấm", "kg", "30"},    // trùng tên trong file
		{"Nhôm thanh", "", ""},      // thiếu đơn vị
		{"Kẽm", "kg", "abc"},        // tồn kho không phải số
		{"Đồng", "kg", "-5"},        // tồn kho âm
		{"", "kg", "10"},            // tên trống: bỏ qua im lặng
		{"Inox 304", "m", "12"},
	}

	parsed, skipped := parseMaterialRows(rows)
	require.Len(t, parsed, 2)
	assert.Equal(t, "Thép tấm", parsed[0].Name)
	assert.Equal(t, "Inox 304", parsed[1].Name)
	assert.Len(t, skipped, 4)
}

func TestParseMaterialRows_NoHeader(t *testing.T) {
	// Không có dòng tiêu đề thì đọc từ dòng đầu
	rows := [][]string{
		{"Thép V5", "kg", "10"},
	}

	parsed, skipped := parseMaterialRows(rows)
	require.Len(t, parsed, 1)
	assert.Empty(t, skipped)
}

func TestParseMaterialRows_Empty(t *testing.T) {
	parsed, skipped := parseMaterialRows(nil)
	assert.Empty(t, parsed)
	assert.Empty(t, skipped)
}
