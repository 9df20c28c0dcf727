package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthsPTBR = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Форматы дат, которые принимает ParseTime помимо RFC 3339.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime разбирает значение даты из JSON: строку в одном из распространённых форматов
// или число миллисекунд Unix. Дата без часового пояса считается местной. Для пустого или нераспознанного значения возвращается нулевое время.
func ParseTime(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		ms, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
		if err != nil {
			return time.Time{}
		}
		return time.UnixMilli(ms)
	}

	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatDate форматирует дату в местном времени в виде "15 de outubro de 2026, 3:04pm".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "Data inválida"
	}
	t = t.Local()

	period := "am"
	if t.Hour() >= 12 {
		period = "pm"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%d de %s de %d, %d:%02d%s",
		t.Day(), monthsPTBR[t.Month()-1], t.Year(), hour, t.Minute(), period)
}
