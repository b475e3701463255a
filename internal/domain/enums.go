package domain

type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "not_started"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on_hold"
	ProjectArchived   ProjectStatus = "archived"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectNotStarted, ProjectInProgress, ProjectCompleted, ProjectOnHold, ProjectArchived:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank orders priorities for sorting (higher = more pressing).
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

type RiskStatus string

const (
	RiskOpen      RiskStatus = "open"
	RiskMitigated RiskStatus = "mitigated"
	RiskClosed    RiskStatus = "closed"
)

func (s RiskStatus) Valid() bool {
	switch s {
	case RiskOpen, RiskMitigated, RiskClosed:
		return true
	}
	return false
}

// RiskLevel is the qualitative bucket derived from a numeric severity.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

type ResponseStrategy string

const (
	StrategyAvoid    ResponseStrategy = "avoid"
	StrategyMitigate ResponseStrategy = "mitigate"
	StrategyTransfer ResponseStrategy = "transfer"
	StrategyAccept   ResponseStrategy = "accept"
)

func (s ResponseStrategy) Valid() bool {
	switch s {
	case StrategyAvoid, StrategyMitigate, StrategyTransfer, StrategyAccept:
		return true
	}
	return false
}

type PlanStatus string

const (
	PlanPlanned    PlanStatus = "planned"
	PlanInProgress PlanStatus = "in_progress"
	PlanDone       PlanStatus = "done"
)

func (s PlanStatus) Valid() bool {
	switch s {
	case PlanPlanned, PlanInProgress, PlanDone:
		return true
	}
	return false
}

type ResourceType string

const (
	ResourceHuman     ResourceType = "human"
	ResourceEquipment ResourceType = "equipment"
	ResourceMaterial  ResourceType = "material"
	ResourceOther     ResourceType = "other"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceHuman, ResourceEquipment, ResourceMaterial, ResourceOther:
		return true
	}
	return false
}
