package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tasknest-dev/tasknest/db"
	"github.com/tasknest-dev/tasknest/internal/models"
	"github.com/tasknest-dev/tasknest/internal/utils"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTaskRequest uses pointer fields so an omitted field and an explicit
// zero value are distinguishable: {"is_done": false} clears the flag,
// leaving it out keeps the current value.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsDone      *bool   `json:"is_done"`
}

type TaskResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsDone      bool      `json:"is_done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TaskListMeta struct {
	Total           int `json:"total"`
	CompletedCount  int `json:"completed_count"`
	IncompleteCount int `json:"incomplete_count"`
}

type TaskListResponse struct {
	Meta            TaskListMeta   `json:"meta"`
	CompletedTasks  []TaskResponse `json:"completed_tasks"`
	IncompleteTasks []TaskResponse `json:"incomplete_tasks"`
}

func toTaskResponse(task models.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		IsDone:      task.IsDone,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)

	if req.Title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	task := models.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to create task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	BroadcastTaskRefresh(userID)

	ctx.JSON(http.StatusCreated, gin.H{"task": toTaskResponse(task)})
}

func ListTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var tasks []models.Task

	if err := db.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&tasks).Error; err != nil {
		log.Printf("Failed to list tasks for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := TaskListResponse{
		CompletedTasks:  []TaskResponse{},
		IncompleteTasks: []TaskResponse{},
	}

	for _, task := range tasks {
		if task.IsDone {
			response.CompletedTasks = append(response.CompletedTasks, toTaskResponse(task))
		} else {
			response.IncompleteTasks = append(response.IncompleteTasks, toTaskResponse(task))
		}
	}

	response.Meta = TaskListMeta{
		Total:           len(tasks),
		CompletedCount:  len(response.CompletedTasks),
		IncompleteCount: len(response.IncompleteTasks),
	}

	ctx.JSON(http.StatusOK, response)
}

func GetTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task models.Task

	// Rows owned by someone else are indistinguishable from missing rows.
	if err := db.DB.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			log.Printf("Failed to fetch task %d: %v", taskID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"task": toTaskResponse(task)})
}

func UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty"})
			return
		}
		updates["title"] = title
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if req.IsDone != nil {
		updates["is_done"] = *req.IsDone
	}

	// One conditional statement scoped to id and owner; zero affected rows
	// means the task does not exist for this user.
	result := db.DB.Model(&models.Task{}).Where("id = ? AND user_id = ?", taskID, userID).Updates(updates)

	if result.Error != nil {
		log.Printf("Failed to update task %d: %v", taskID, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	var task models.Task

	if err := db.DB.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		log.Printf("Failed to reload task %d: %v", taskID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	BroadcastTaskRefresh(userID)

	ctx.JSON(http.StatusOK, gin.H{"task": toTaskResponse(task)})
}

func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := db.DB.Where("id = ? AND user_id = ?", taskID, userID).Delete(&models.Task{})

	if result.Error != nil {
		log.Printf("Failed to delete task %d: %v", taskID, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	BroadcastTaskRefresh(userID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
