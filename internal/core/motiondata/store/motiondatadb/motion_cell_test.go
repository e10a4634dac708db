package motiondatadb

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gowvp/motionsearch/internal/core/motiondata"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func generateMockDB() (*gorm.DB, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	return gdb, mock, err
}

func TestMotionCellSeconds(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	store := NewDB(db).MotionCell()

	mock.ExpectQuery(`SELECT DISTINCT .*second_of_day.* FROM "motion_cells" WHERE camera_id = \$1 AND day = \$2 ORDER BY second_of_day ASC`).
		WithArgs("cam", "2026-10-19").
		WillReturnRows(sqlmock.NewRows([]string{"second_of_day"}).AddRow(5).AddRow(9))

	got, err := store.Seconds(context.Background(), orm.Where("camera_id = ?", "cam"), orm.Where("day = ?", "2026-10-19"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 5 || got[1] != 9 {
		t.Errorf("got %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}

func TestMotionCellDel(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	store := NewDB(db).MotionCell()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "motion_cells" WHERE day < \$1`).
		WithArgs("2026-10-01").
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectCommit()

	n, err := store.Del(context.Background(), orm.Where("day < ?", "2026-10-01"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 12 {
		t.Errorf("rows affected = %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}

func TestMotionCellBatchAddEmpty(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	if err := NewDB(db).MotionCell().BatchAdd(context.Background(), []*motiondata.MotionCell{}); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("no statement expected:", err)
	}
}
