package alerter

// AlertRequest алерт в свободной форме от внешних систем
type AlertRequest struct {
	Message string `json:"message" binding:"required"`
	Source  string `json:"source"`
}

// RailwayEvent тело вебхука деплой-событий Railway
type RailwayEvent struct {
	Type      string        `json:"type"`
	Details   RailwayDeploy `json:"details"`
	Resource  RailwayScope  `json:"resource"`
	Severity  string        `json:"severity"`
	Timestamp string        `json:"timestamp"`
}

// RailwayDeploy подробности конкретного деплоя
type RailwayDeploy struct {
	ID            string `json:"id"`
	Source        string `json:"source"`
	Status        string `json:"status"`
	Branch        string `json:"branch"`
	CommitHash    string `json:"commitHash"`
	CommitAuthor  string `json:"commitAuthor"`
	CommitMessage string `json:"commitMessage"`
}

// RailwayScope проект, окружение и сервис, к которым относится событие
type RailwayScope struct {
	Project     RailwayRef `json:"project"`
	Environment RailwayEnv `json:"environment"`
	Service     RailwayRef `json:"service"`
}

type RailwayRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RailwayEnv struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsEphemeral bool   `json:"isEphemeral"`
}
