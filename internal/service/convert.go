package service

import (
	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/model"
	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
)

// 请求中的展示名 / 时间字符串 → 模型编码
// 绑定层已校验过一次，这里仍返回 ValidationError 以便服务可被直接调用

func parseWorkingDay(label string) (model.WorkingDay, error) {
	d, ok := model.ParseWorkingDay(label)
	if !ok {
		return 0, pkgerrors.NewValidationf("%q is not a valid choice.", label)
	}
	return d, nil
}

func parseShift(label string) (model.Shift, error) {
	s, ok := model.ParseShift(label)
	if !ok {
		return 0, pkgerrors.NewValidationf("%q is not a valid choice.", label)
	}
	return s, nil
}

func parseClock(field, value string) (model.Clock, error) {
	c, err := model.ParseClock(value)
	if err != nil {
		return 0, pkgerrors.NewValidationf("Invalid %s", field)
	}
	return c, nil
}

func toScheduleData(item *dto.ScheduleItemRequest) (ScheduleData, error) {
	var (
		d   ScheduleData
		err error
	)
	d.UserID = item.User
	if d.WorkingDay, err = parseWorkingDay(item.WorkingDay); err != nil {
		return d, err
	}
	if d.Shift, err = parseShift(item.Shift); err != nil {
		return d, err
	}
	if d.StartTime, err = parseClock("start_time", item.StartTime); err != nil {
		return d, err
	}
	if d.EndTime, err = parseClock("end_time", item.EndTime); err != nil {
		return d, err
	}
	return d, nil
}

// toScheduleUpdate 不含 user：用户变更走替换流程
func toScheduleUpdate(req *dto.UpdateScheduleRequest) (ScheduleUpdate, error) {
	var upd ScheduleUpdate
	if req.WorkingDay != nil {
		d, err := parseWorkingDay(*req.WorkingDay)
		if err != nil {
			return upd, err
		}
		upd.WorkingDay = Some(d)
	}
	if req.Shift != nil {
		s, err := parseShift(*req.Shift)
		if err != nil {
			return upd, err
		}
		upd.Shift = Some(s)
	}
	if req.StartTime != nil {
		c, err := parseClock("start_time", *req.StartTime)
		if err != nil {
			return upd, err
		}
		upd.StartTime = Some(c)
	}
	if req.EndTime != nil {
		c, err := parseClock("end_time", *req.EndTime)
		if err != nil {
			return upd, err
		}
		upd.EndTime = Some(c)
	}
	return upd, nil
}
