package model

import "time"

// Intervention is a reported issue or planned preventive task tracked through the workflow.
type Intervention struct {
	ID          uint64             `gorm:"primaryKey" json:"id"`
	Description string             `gorm:"type:text;not null" json:"description"`
	Status      InterventionStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	Priority    Priority           `gorm:"type:varchar(16);index;not null" json:"priority"`
	Type        InterventionType   `gorm:"type:varchar(32);index;not null" json:"type"`

	LocationID   uint64  `gorm:"index;not null" json:"location_id"`
	EquipmentID  *uint64 `gorm:"index" json:"equipment_id,omitempty"`
	ReportedByID *uint64 `gorm:"index" json:"reported_by_id,omitempty"`

	// Recurrence (PREVENTIVE only). Interval is in days.
	IsRecurring        bool    `json:"is_recurring"`
	RecurrenceInterval int     `json:"recurrence_interval,omitempty"`
	PreviousID         *uint64 `gorm:"column:previous_intervention_id;uniqueIndex" json:"previous_intervention_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PlannedAt   *time.Time `json:"planned_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	DeniedAt    *time.Time `json:"denied_at,omitempty"`
	RemindedAt  *time.Time `json:"-"`

	Location  *Location             `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Equipment *Equipment            `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
	Assignees []Person              `gorm:"many2many:intervention_assignees" json:"assignees,omitempty"`
	History   []InterventionHistory `gorm:"foreignKey:InterventionID" json:"history,omitempty"`
}

// InterventionHistory is an append-only log entry: written once per workflow
// event, never updated or deleted.
type InterventionHistory struct {
	ID             uint64        `gorm:"primaryKey" json:"id"`
	InterventionID uint64        `gorm:"index;not null" json:"intervention_id"`
	Action         HistoryAction `gorm:"type:varchar(32);not null" json:"action"`
	Notes          string        `gorm:"type:text" json:"notes,omitempty"`
	PersonID       *uint64       `gorm:"index" json:"person_id,omitempty"`
	AccountID      *uint64       `gorm:"index" json:"account_id,omitempty"`
	LoggedAt       time.Time     `gorm:"index;not null" json:"logged_at"`
}

// InterventionAssignee is the intervention<->person join row.
type InterventionAssignee struct {
	InterventionID uint64 `gorm:"primaryKey" json:"intervention_id"`
	PersonID       uint64 `gorm:"primaryKey" json:"person_id"`
}

type Location struct {
	ID       uint64 `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(128);not null;uniqueIndex" json:"name"`
	Building string `gorm:"type:varchar(64)" json:"building,omitempty"`
	Floor    string `gorm:"type:varchar(16)" json:"floor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Department struct {
	ID   uint64 `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(128);not null;uniqueIndex" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EquipmentType struct {
	ID   uint64 `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(128);not null;uniqueIndex" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Equipment struct {
	ID           uint64  `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"type:varchar(128);not null" json:"name"`
	SerialNumber string  `gorm:"type:varchar(64);index" json:"serial_number,omitempty"`
	TypeID       *uint64 `gorm:"index" json:"type_id,omitempty"`
	LocationID   *uint64 `gorm:"index" json:"location_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Type     *EquipmentType `gorm:"foreignKey:TypeID" json:"equipment_type,omitempty"`
	Location *Location      `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

type Person struct {
	ID           uint64  `gorm:"primaryKey" json:"id"`
	FirstName    string  `gorm:"type:varchar(64);not null" json:"first_name"`
	LastName     string  `gorm:"type:varchar(64);not null" json:"last_name"`
	Email        string  `gorm:"type:varchar(128);index" json:"email,omitempty"`
	Phone        string  `gorm:"type:varchar(32)" json:"phone,omitempty"`
	DepartmentID *uint64 `gorm:"index" json:"department_id,omitempty"`
	IsTechnician bool    `gorm:"index" json:"is_technician"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

type UserAccount struct {
	ID           uint64  `gorm:"primaryKey" json:"id"`
	Email        string  `gorm:"type:varchar(128);not null;uniqueIndex" json:"email"`
	PasswordHash string  `gorm:"type:varchar(128);not null" json:"-"`
	Role         Role    `gorm:"type:varchar(32);not null" json:"role"`
	PersonID     *uint64 `gorm:"index" json:"person_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}
