package report

import "time"

// buddhistEraOffset converts a Gregorian year to the Thai Buddhist era.
const buddhistEraOffset = 543

var thaiMonths = [12]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน",
	"พฤษภาคม", "มิถุนายน", "กรกฎาคม", "สิงหาคม",
	"กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

var thaiMonthsShort = [12]string{
	"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.",
	"พ.ค.", "มิ.ย.", "ก.ค.", "ส.ค.",
	"ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
}

// ThaiMonth returns the full Thai month name.
func ThaiMonth(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return thaiMonths[m-1]
}

// ThaiMonthShort returns the abbreviated Thai month name.
func ThaiMonthShort(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return thaiMonthsShort[m-1]
}

// BuddhistYear converts a Gregorian year to the Buddhist era.
func BuddhistYear(year int) int {
	return year + buddhistEraOffset
}
