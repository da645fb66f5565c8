package api

import (
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/gifurl"
	"alcyxob/fitness-catalog/internal/repository"
	"alcyxob/fitness-catalog/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	proxyBaseURL    string // Replaces key-bearing gif URLs in responses
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, proxyBaseURL string) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, proxyBaseURL: proxyBaseURL}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseResponse is the exercise shape the app's library screen renders.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	CatalogID        string    `json:"catalogId,omitempty"`
	Name             string    `json:"name"`
	BodyPart         string    `json:"bodyPart,omitempty"`
	Target           string    `json:"target,omitempty"`
	Equipment        string    `json:"equipment,omitempty"`
	SecondaryMuscles []string  `json:"secondaryMuscles"`
	Category         string    `json:"category,omitempty"`
	Difficulty       string    `json:"difficulty,omitempty"`
	Description      string    `json:"description,omitempty"`
	Instructions     []string  `json:"instructions"`
	Tags             []string  `json:"tags"`
	GifURL           string    `json:"gifUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
// Nil slices become empty arrays so clients never see null, and a gifUrl holding
// the catalog API key is swapped for the proxy URL.
func MapExerciseToResponse(ex *domain.Exercise, proxyBaseURL string) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:               ex.ID,
		CatalogID:        ex.CatalogID,
		Name:             ex.Name,
		BodyPart:         ex.BodyPart,
		Target:           ex.Target,
		Equipment:        ex.Equipment,
		SecondaryMuscles: nonNil(ex.SecondaryMuscles),
		Category:         ex.Category,
		Difficulty:       ex.Difficulty,
		Description:      ex.Description,
		Instructions:     nonNil(ex.Instructions),
		Tags:             nonNil(ex.Tags),
		GifURL:           gifurl.ClientURL(ex.GifURL, proxyBaseURL, ex.CatalogID),
		CreatedAt:        ex.CreatedAt,
		UpdatedAt:        ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise, proxyBaseURL string) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i], proxyBaseURL)
	}
	return responses
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// --- Handler Methods ---

// ListExercises godoc
// @Summary List the exercise library
// @Description Lists active exercises, optionally filtered by body part, difficulty or name.
// @Tags Exercises
// @Produce json
// @Param bodyPart query string false "Body part, e.g. chest"
// @Param difficulty query string false "beginner, intermediate or advanced"
// @Param q query string false "Case-insensitive name search"
// @Success 200 {array} ExerciseResponse
// @Failure 400 {object} gin.H "Invalid difficulty"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	filter := repository.ExerciseFilter{
		BodyPart:   c.Query("bodyPart"),
		Difficulty: c.Query("difficulty"),
		Query:      c.Query("q"),
	}
	if filter.Difficulty != "" && !domain.Difficulty(filter.Difficulty).Valid() {
		abortWithError(c, http.StatusBadRequest, "difficulty must be one of beginner, intermediate, advanced")
		return
	}

	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}

	c.JSON(http.StatusOK, MapExercisesToResponse(exercises, h.proxyBaseURL))
}

// GetExercise godoc
// @Summary Get one exercise
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} gin.H "Exercise not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, "Exercise not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise, h.proxyBaseURL))
}
