package services

import (
	"errors"
	"strings"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/polymathuniversata/toDoApp/internal/models"
)

type TaskService interface {
	CreateTask(db *gorm.DB, task models.Task) (models.Task, error)
	GetTasks(db *gorm.DB) ([]models.Task, error)
	GetTaskByID(db *gorm.DB, id uuid.UUID) (models.Task, error)
	UpdateTask(db *gorm.DB, id uuid.UUID, patch models.TaskPatch) (models.Task, error)
	DeleteTask(db *gorm.DB, id uuid.UUID) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task models.Task) (models.Task, error) {
	task.Title = strings.TrimSpace(task.Title)

	var errs []FieldError
	if task.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "Title is required"})
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if !task.Priority.Valid() {
		errs = append(errs, FieldError{Field: "priority", Message: "Priority must be low, medium, or high"})
	}
	if len(errs) > 0 {
		return models.Task{}, &ValidationError{Errors: errs}
	}

	if task.ID == uuid.Nil {
		task.ID = uuid.Must(uuid.NewV4())
	}

	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// GetTasks lists every task ordered by priority high to low, then due date
// ascending with undated tasks last. created_at breaks remaining ties so
// the order is stable across equal priorities and dates.
func (s *TaskServiceImpl) GetTasks(db *gorm.DB) ([]models.Task, error) {
	var tasks []models.Task
	err := db.
		Order("CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END").
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").
		Order("due_date ASC").
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, id uuid.UUID) (models.Task, error) {
	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// UpdateTask applies the provided patch fields and leaves the rest of the
// row untouched. Concurrent updates are last-write-wins; there is no
// version column.
func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, id uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		return models.Task{}, err
	}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return models.Task{}, &ValidationError{Errors: []FieldError{
				{Field: "title", Message: "Title is required"},
			}}
		}
		patch.Title = &trimmed
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return models.Task{}, &ValidationError{Errors: []FieldError{
			{Field: "priority", Message: "Priority must be low, medium, or high"},
		}}
	}

	patch.Apply(&task)

	if err := db.Save(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, id uuid.UUID) error {
	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&task).Error
}

// IsNotFound reports whether err means the task id does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
