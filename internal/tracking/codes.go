package tracking

import "sort"

// PaymentCollectedCode отмечает событие оплаты при вручении.
const PaymentCollectedCode = "ISSPAY"

// Внутренние коды перевозчика: сортировка, транзит, таможенная обработка,
// служебные сканирования. Событие, у которого все коды из этого набора,
// покупателю не показывается.
var suppressed = map[string]struct{}{
	// сортировка
	"SRT_IN":        {},
	"SRT_OUT":       {},
	"SRT_CUSTOM":    {},
	"SRT_HUB":       {},
	"SRT_LINE":      {},
	"SRT_MANUAL":    {},
	"SRT_AUTO":      {},
	"SRT_REJECT":    {},
	"SRT_RESORT":    {},
	"SRT_BAG":       {},
	"SRT_UNBAG":     {},
	"SRT_CONTAINER": {},
	"SRT_PALLET":    {},
	"SRT_WEIGHT":    {},
	"SRT_SCAN":      {},
	"SRT_LABEL":     {},
	"SRT_RETRY":     {},

	// транзит
	"TRN_DEP":      {},
	"TRN_ARR":      {},
	"TRN_LOAD":     {},
	"TRN_UNLOAD":   {},
	"TRN_ROUTE":    {},
	"TRN_REROUTE":  {},
	"TRN_DELAY":    {},
	"TRN_HANDOVER": {},
	"TRN_AIR_DEP":  {},
	"TRN_AIR_ARR":  {},
	"TRN_RAIL_DEP": {},
	"TRN_RAIL_ARR": {},
	"TRN_ROAD_DEP": {},
	"TRN_ROAD_ARR": {},
	"TRN_SEA_DEP":  {},
	"TRN_SEA_ARR":  {},
	"TRN_MANIFEST": {},
	"TRN_SEAL":     {},
	"TRN_UNSEAL":   {},
	"TRN_CHECK":    {},
	"TRN_TRACE":    {},

	// таможня
	"CST_IN":       {},
	"CST_OUT":      {},
	"CST_PRESENT":  {},
	"CST_DECLARE":  {},
	"CST_INSPECT":  {},
	"CST_XRAY":     {},
	"CST_HOLD":     {},
	"CST_RELEASE":  {},
	"CST_DOCS":     {},
	"CST_DUTY":     {},
	"CST_EXPORT":   {},
	"CST_IMPORT":   {},
	"CST_TRANSIT":  {},
	"CST_BROKER":   {},
	"CST_REVIEW":   {},
	"CST_APPROVED": {},

	// склад
	"WH_IN":      {},
	"WH_OUT":     {},
	"WH_STORE":   {},
	"WH_PICK":    {},
	"WH_PACK":    {},
	"WH_MOVE":    {},
	"WH_COUNT":   {},
	"WH_RELABEL": {},
	"WH_REPACK":  {},
	"WH_DAMAGE":  {},
	"WH_PHOTO":   {},
	"WH_MEASURE": {},
	"WH_AUDIT":   {},

	// обмен данными
	"EDI_PRE":     {},
	"EDI_ACK":     {},
	"EDI_UPD":     {},
	"EDI_SYNC":    {},
	"EDI_CANCEL":  {},
	"EDI_RESEND":  {},
	"EDI_ITMATT":  {},
	"EDI_PREDES":  {},
	"EDI_RESDES":  {},
	"EDI_CARDIT":  {},
	"EDI_RESDIT":  {},
	"EDI_EMSEVT":  {},
	"EDI_CUSITM":  {},
	"EDI_CUSRSP":  {},
	"EDI_INVOICE": {},

	// отделение связи
	"OPS_ACCEPT":   {},
	"OPS_PREPARE":  {},
	"OPS_DISPATCH": {},
	"OPS_RECEIVE":  {},
	"OPS_STORE":    {},
	"OPS_TRANSFER": {},
	"OPS_RETURN":   {},
	"OPS_SCAN":     {},
	"OPS_AUDIT":    {},
	"OPS_CLOSE":    {},
	"OPS_NOTICE":   {},

	// курьер
	"CUR_ASSIGN":   {},
	"CUR_UNASSIGN": {},
	"CUR_LOAD":     {},
	"CUR_ROUTE":    {},
	"CUR_GPS":      {},
	"CUR_CALL":     {},
	"CUR_SHIFT":    {},
	"CUR_BACK":     {},
}

// IsSuppressed сообщает, является ли код внутренним.
func IsSuppressed(code string) bool {
	_, ok := suppressed[code]
	return ok
}

// SuppressedCodes возвращает отсортированный список внутренних кодов.
func SuppressedCodes() []string {
	codes := make([]string, 0, len(suppressed))
	for c := range suppressed {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
