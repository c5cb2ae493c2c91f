package handlers

import (
	"net/http"

	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/workflow"
	"github.com/gin-gonic/gin"
)

func createEmployee(c *gin.Context) {
	var input models.NewEmployee
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	employee, err := models.CreateEmployee(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func recordAttendance(c *gin.Context) {
	var input models.NewAttendance
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	attendance, err := models.RecordAttendance(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attendance)
}

func createLeave(c *gin.Context) {
	var input models.NewLeave
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	leave, err := models.CreateLeave(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, leave)
}

type leaveStatusInput struct {
	Status models.LeaveStatus `json:"status" binding:"required"`
}

func updateLeaveStatus(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input leaveStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	leave, err := models.UpdateLeaveStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, leave)
}

type calculateSalaryInput struct {
	EmployeeId int `json:"employee_id" binding:"required"`
	Year       int `json:"year" binding:"required"`
	Month      int `json:"month" binding:"required"`
}

func calculateSalary(c *gin.Context) {
	var input calculateSalaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	salary, err := workflow.CalculateSalary(c.Request.Context(), input.EmployeeId, input.Year, input.Month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salary)
}

type paySalaryInput struct {
	AccountId int `json:"account_id" binding:"required"`
}

func paySalary(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input paySalaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	salary, err := workflow.PaySalary(c.Request.Context(), id, input.AccountId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salary)
}

func listSalaries(c *gin.Context) {
	month := queryInt(c, "month")
	year := queryInt(c, "year")
	if month < 1 || month > 12 || year == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month and year are required"})
		return
	}
	salaries, err := models.GetSalaries(c.Request.Context(), month, year, queryInt(c, "offset"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salaries)
}
