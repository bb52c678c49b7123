package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableStates = "states"

	colID               = "id"
	colStateName        = "state_name"
	colCapitalCity      = "capital_city"
	colCity2            = "city2"
	colCity3            = "city3"
	colStatehoodYear    = "statehood_year"
	colCapitalSinceYear = "capital_since_year"
	colCapitalRank      = "capital_rank"

	tableQuizzes = "quizzes"

	colCompletedAt       = "completed_at"
	colScore             = "score"
	colQuestionsAnswered = "questions_answered"

	tableSelections = "quiz_selections"

	colQuizID         = "quiz_id"
	colQuestionNumber = "question_number"
	colAnswer         = "answer"
)

// stateSlotColumns are the six quizzes columns referencing states, in
// question order.
var stateSlotColumns = [QuestionsPerQuiz]string{
	"state1_id", "state2_id", "state3_id", "state4_id", "state5_id", "state6_id",
}

var (
	// StatesColumns holds the columns for the "states" table.
	StatesColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colStateName, Type: field.TypeString},
		{Name: colCapitalCity, Type: field.TypeString},
		{Name: colCity2, Type: field.TypeString},
		{Name: colCity3, Type: field.TypeString},
		{Name: colStatehoodYear, Type: field.TypeInt, Nullable: true},
		{Name: colCapitalSinceYear, Type: field.TypeInt, Nullable: true},
		{Name: colCapitalRank, Type: field.TypeInt, Nullable: true},
	}
	// StatesTable holds the schema information for the "states" table.
	StatesTable = &schema.Table{
		Name:       tableStates,
		Columns:    StatesColumns,
		PrimaryKey: []*schema.Column{StatesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "state_state_name", Columns: []*schema.Column{StatesColumns[1]}},
		},
	}

	// QuizzesColumns holds the columns for the "quizzes" table.
	QuizzesColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colCompletedAt, Type: field.TypeTime, Nullable: true},
		{Name: colScore, Type: field.TypeInt, Default: 0},
		{Name: colQuestionsAnswered, Type: field.TypeInt, Default: 0},
		{Name: stateSlotColumns[0], Type: field.TypeInt},
		{Name: stateSlotColumns[1], Type: field.TypeInt},
		{Name: stateSlotColumns[2], Type: field.TypeInt},
		{Name: stateSlotColumns[3], Type: field.TypeInt},
		{Name: stateSlotColumns[4], Type: field.TypeInt},
		{Name: stateSlotColumns[5], Type: field.TypeInt},
	}
	// QuizzesTable holds the schema information for the "quizzes" table.
	QuizzesTable = &schema.Table{
		Name:       tableQuizzes,
		Columns:    QuizzesColumns,
		PrimaryKey: []*schema.Column{QuizzesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "quizzes_states_state1", Columns: []*schema.Column{QuizzesColumns[4]}, RefColumns: []*schema.Column{StatesColumns[0]}, OnDelete: schema.NoAction},
			{Symbol: "quizzes_states_state2", Columns: []*schema.Column{QuizzesColumns[5]}, RefColumns: []*schema.Column{StatesColumns[0]}, OnDelete: schema.NoAction},
			{Symbol: "quizzes_states_state3", Columns: []*schema.Column{QuizzesColumns[6]}, RefColumns: []*schema.Column{StatesColumns[0]}, OnDelete: schema.NoAction},
			{Symbol: "quizzes_states_state4", Columns: []*schema.Column{QuizzesColumns[7]}, RefColumns: []*schema.Column{StatesColumns[0]}, OnDelete: schema.NoAction},
			{Symbol: "quizzes_states_state5", Columns: []*schema.Column{QuizzesColumns[8]}, RefColumns: []*schema.Column{StatesColumns[0]}, OnDelete: schema.NoAction},
			{Symbol: "quizzes_states_state6", Columns: []*schema.Column{QuizzesColumns[9]}, RefColumns: []*schema.Column{StatesColumns[0]}, OnDelete: schema.NoAction},
		},
		Indexes: []*schema.Index{
			{Name: "quiz_completed_at", Columns: []*schema.Column{QuizzesColumns[1]}},
		},
	}

	// SelectionsColumns holds the columns for the "quiz_selections" table.
	SelectionsColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colQuizID, Type: field.TypeInt},
		{Name: colQuestionNumber, Type: field.TypeInt},
		{Name: colAnswer, Type: field.TypeString},
	}
	// SelectionsTable holds the schema information for the "quiz_selections" table.
	SelectionsTable = &schema.Table{
		Name:       tableSelections,
		Columns:    SelectionsColumns,
		PrimaryKey: []*schema.Column{SelectionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{Symbol: "quiz_selections_quizzes_selections", Columns: []*schema.Column{SelectionsColumns[1]}, RefColumns: []*schema.Column{QuizzesColumns[0]}, OnDelete: schema.Cascade},
		},
		Indexes: []*schema.Index{
			{Name: "selection_quiz_id_question_number", Unique: true, Columns: []*schema.Column{SelectionsColumns[1], SelectionsColumns[2]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		StatesTable,
		QuizzesTable,
		SelectionsTable,
	}
)

func init() {
	for _, fk := range QuizzesTable.ForeignKeys {
		fk.RefTable = StatesTable
	}
	SelectionsTable.ForeignKeys[0].RefTable = QuizzesTable
}

// migrate creates or updates all tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, Tables...)
}
