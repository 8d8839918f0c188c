package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/keshavmohta09/RosterPulse/internal/model"
)

// ── iCalendar 导出 ──────────────────────────────────────────
//
// 排班只有星期与时刻，没有具体日期：
//   - 每条排班生成一个 VEVENT，RRULE 为 FREQ=WEEKLY
//   - 首次发生日取导出时刻起最近的对应星期（含当天）
//   - 时间写成不带时区的本地时间，由日历客户端按本地时区显示
// ─────────────────────────────────────────────────────────────

const (
	calendarProdID = "-//RosterPulse//Roster Schedules//EN"
	calendarName   = "My shifts"
	icsLocalLayout = "20060102T150405"
)

var icsByDay = map[model.WorkingDay]string{
	model.Monday:    "MO",
	model.Tuesday:   "TU",
	model.Wednesday: "WE",
	model.Thursday:  "TH",
	model.Friday:    "FR",
	model.Saturday:  "SA",
	model.Sunday:    "SU",
}

func (s *exportService) ExportCalendar(ctx context.Context, userID string) ([]byte, error) {
	rows, err := s.repo.RosterUserSchedule.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询员工排班失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	now := s.now()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProdID)
	cal.SetXWRCalName(calendarName)

	for i := range rows {
		row := &rows[i]
		day := firstOccurrence(now, row.WorkingDay)

		ev := cal.AddEvent(row.ID + "@roster-pulse")
		ev.SetDtStampTime(now)
		ev.SetProperty(ics.ComponentPropertyDtStart, day.Add(time.Duration(row.StartTime)*time.Second).Format(icsLocalLayout))
		ev.SetProperty(ics.ComponentPropertyDtEnd, day.Add(time.Duration(row.EndTime)*time.Second).Format(icsLocalLayout))
		ev.AddRrule("FREQ=WEEKLY;BYDAY=" + icsByDay[row.WorkingDay])
		ev.SetSummary(calendarSummary(row))
	}

	return []byte(cal.Serialize()), nil
}

// firstOccurrence now 当天零点起，最近一个落在 day 的日期
func firstOccurrence(now time.Time, day model.WorkingDay) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	want := time.Weekday(int(day) % 7) // Sunday=7 → time.Sunday=0
	ahead := (int(want) - int(midnight.Weekday()) + 7) % 7
	return midnight.AddDate(0, 0, ahead)
}

func calendarSummary(row *model.RosterUserSchedule) string {
	if row.Roster == nil {
		return row.Shift.String()
	}
	return fmt.Sprintf("%s (%s)", row.Shift, row.Roster.Title)
}
