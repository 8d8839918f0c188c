package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("Failed to generate the export file")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRoster 导出当前管理者负责的排班表为 Excel
	ExportRoster(ctx context.Context, rosterID, managerID string) (*bytes.Buffer, string, error)
	// ExportCalendar 导出员工本人的排班为 iCalendar，每条排班是一个按周重复的事件
	ExportCalendar(ctx context.Context, userID string) ([]byte, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster — 导出排班表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：排班表标题
//   - 第 2 行表头：Staff member | Monday ~ Sunday
//   - 每名员工一行，单元格为 "Morning Shift 09:00-17:00"，同一天多条换行
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportRoster(ctx context.Context, rosterID, managerID string) (*bytes.Buffer, string, error) {
	// 1. 归属校验
	ok, err := s.repo.RosterManager.IsManagerOf(ctx, rosterID, managerID)
	if err != nil {
		s.logger.Error("查询排班表管理者失败", zap.Error(err))
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrRosterNotFound
	}

	roster, err := s.repo.Roster.GetByID(ctx, rosterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRosterNotFound
		}
		s.logger.Error("查询排班表失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 有效排班条目
	items, err := s.repo.RosterUserSchedule.ListByRoster(ctx, rosterID)
	if err != nil {
		s.logger.Error("查询排班条目失败", zap.Error(err))
		return nil, "", err
	}

	// 3. 按员工聚合: userID → day → 单元格文本
	type staffRow struct {
		name  string
		cells map[model.WorkingDay][]string
	}
	byUser := make(map[string]*staffRow)
	var order []string
	for i := range items {
		it := &items[i]
		r, ok := byUser[it.UserID]
		if !ok {
			name := it.UserID
			if it.User != nil {
				name = it.User.FullName()
			}
			r = &staffRow{name: name, cells: make(map[model.WorkingDay][]string)}
			byUser[it.UserID] = r
			order = append(order, it.UserID)
		}
		r.cells[it.WorkingDay] = append(r.cells[it.WorkingDay], scheduleCellText(it))
	}
	sort.SliceStable(order, func(i, j int) bool {
		return byUser[order[i]].name < byUser[order[j]].name
	})

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Roster"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	days := model.WorkingDays()

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, colName(1), colName(len(days)), 26)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", roster.Title)
	f.MergeCell(sheetName, "A1", cell(colName(len(days)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "Staff member")
	for i, d := range days {
		f.SetCellValue(sheetName, cell(colName(i+1), row), d.String())
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(days)), row), headerStyle)

	// 数据行
	row = 3
	for _, uid := range order {
		r := byUser[uid]
		f.SetCellValue(sheetName, cell("A", row), r.name)
		for i, d := range days {
			text := "-"
			if c := r.cells[d]; len(c) > 0 {
				text = strings.Join(c, "\n")
			}
			f.SetCellValue(sheetName, cell(colName(i+1), row), text)
		}
		f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(days)), row), wrapStyle)
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("roster_%s.xlsx", safeFilename(roster.Title))
	return buf, filename, nil
}

// ── 辅助函数 ──

func scheduleCellText(s *model.RosterUserSchedule) string {
	return fmt.Sprintf("%s %s-%s", s.Shift, s.StartTime.Short(), s.EndTime.Short())
}

// safeFilename 只保留字母数字、'-' 与 '_'，其余替换为 '_'
func safeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
