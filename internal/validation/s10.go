package validation

import "unicode"

var s10Weights = [8]int{8, 6, 4, 2, 3, 5, 9, 7}

// IsValidTrackingNumber проверяет почтовый трек-номер формата UPU S10
// (например, RR123456785KZ): две буквы сервиса, восемь цифр номера,
// контрольная цифра и двухбуквенный код страны.
func IsValidTrackingNumber(number string) bool {
	if len(number) != 13 {
		return false
	}

	for _, i := range []int{0, 1, 11, 12} {
		ch := rune(number[i])
		if ch > unicode.MaxASCII || !unicode.IsUpper(ch) {
			return false
		}
	}

	sum := 0
	for i := 0; i < 8; i++ {
		ch := rune(number[2+i])
		if !unicode.IsDigit(ch) {
			return false
		}
		sum += int(ch-'0') * s10Weights[i]
	}

	last := rune(number[10])
	if !unicode.IsDigit(last) {
		return false
	}

	check := 11 - sum%11
	switch check {
	case 10:
		check = 0
	case 11:
		check = 5
	}

	return int(last-'0') == check
}
