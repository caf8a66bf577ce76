package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table declarations in the shape ent's migrate package expects. Every event
// table carries the global sequence and a timestamp.

const (
	usersTable          = "users"
	classificationTable = "classification_events"
	contentTable        = "content_events"
	simulationTable     = "simulation_events"
	feedbackTable       = "feedback_events"
	llmRequestTable     = "llm_request_events"
	snapshotsTable      = "snapshots"
)

func eventColumns(extra ...*schema.Column) []*schema.Column {
	return append([]*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}, extra...)
}

func eventIndexes(table string, cols []*schema.Column) []*schema.Index {
	return []*schema.Index{
		{Name: table + "_sequence", Columns: []*schema.Column{cols[1]}},
		{Name: table + "_timestamp", Columns: []*schema.Column{cols[2]}},
	}
}

var (
	usersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "hash", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "age", Type: field.TypeInt},
		{Name: "income", Type: field.TypeFloat64},
		{Name: "goal", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "profile", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	usersSchema = &schema.Table{
		Name:       usersTable,
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "user_age", Columns: []*schema.Column{usersColumns[4]}},
		},
	}

	classificationColumns = eventColumns(
		&schema.Column{Name: "user_id", Type: field.TypeInt},
		&schema.Column{Name: "goal", Type: field.TypeString, Size: 2147483647},
		&schema.Column{Name: "self_assessment", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "dominant", Type: field.TypeString},
		&schema.Column{Name: "score_conservador", Type: field.TypeFloat64},
		&schema.Column{Name: "score_moderado", Type: field.TypeFloat64},
		&schema.Column{Name: "score_agressivo", Type: field.TypeFloat64},
		&schema.Column{Name: "confidence", Type: field.TypeFloat64},
		&schema.Column{Name: "match_count", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "fallback", Type: field.TypeBool, Default: false},
	)
	classificationSchema = &schema.Table{
		Name:       classificationTable,
		Columns:    classificationColumns,
		PrimaryKey: []*schema.Column{classificationColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "classification_events_users_classifications",
			Columns:    []*schema.Column{classificationColumns[3]},
			RefColumns: []*schema.Column{usersColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: eventIndexes(classificationTable, classificationColumns),
	}

	contentColumns = eventColumns(
		&schema.Column{Name: "user_id", Type: field.TypeInt},
		&schema.Column{Name: "profile", Type: field.TypeString},
		&schema.Column{Name: "strategy", Type: field.TypeString},
		&schema.Column{Name: "source", Type: field.TypeString},
		&schema.Column{Name: "content", Type: field.TypeString, Size: 2147483647},
	)
	contentSchema = &schema.Table{
		Name:       contentTable,
		Columns:    contentColumns,
		PrimaryKey: []*schema.Column{contentColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "content_events_users_contents",
			Columns:    []*schema.Column{contentColumns[3]},
			RefColumns: []*schema.Column{usersColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: eventIndexes(contentTable, contentColumns),
	}

	simulationColumns = eventColumns(
		&schema.Column{Name: "user_id", Type: field.TypeInt, Nullable: true},
		&schema.Column{Name: "profile", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "initial_amount", Type: field.TypeFloat64},
		&schema.Column{Name: "monthly_deposit", Type: field.TypeFloat64},
		&schema.Column{Name: "years", Type: field.TypeInt},
		&schema.Column{Name: "annual_rate", Type: field.TypeFloat64},
		&schema.Column{Name: "final_value", Type: field.TypeFloat64},
		&schema.Column{Name: "total_invested", Type: field.TypeFloat64},
	)
	simulationSchema = &schema.Table{
		Name:       simulationTable,
		Columns:    simulationColumns,
		PrimaryKey: []*schema.Column{simulationColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "simulation_events_users_simulations",
			Columns:    []*schema.Column{simulationColumns[3]},
			RefColumns: []*schema.Column{usersColumns[0]},
			OnDelete:   schema.SetNull,
		}},
		Indexes: eventIndexes(simulationTable, simulationColumns),
	}

	feedbackColumns = eventColumns(
		&schema.Column{Name: "user_hash", Type: field.TypeString},
		&schema.Column{Name: "payload", Type: field.TypeJSON},
	)
	feedbackSchema = &schema.Table{
		Name:       feedbackTable,
		Columns:    feedbackColumns,
		PrimaryKey: []*schema.Column{feedbackColumns[0]},
		Indexes: append(eventIndexes(feedbackTable, feedbackColumns),
			&schema.Index{Name: "feedback_user_hash", Columns: []*schema.Column{feedbackColumns[3]}}),
	}

	llmRequestColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	)
	llmRequestSchema = &schema.Table{
		Name:       llmRequestTable,
		Columns:    llmRequestColumns,
		PrimaryKey: []*schema.Column{llmRequestColumns[0]},
		Indexes: append(eventIndexes(llmRequestTable, llmRequestColumns),
			&schema.Index{Name: "llm_request_purpose", Columns: []*schema.Column{llmRequestColumns[5]}},
			&schema.Index{Name: "llm_request_success", Columns: []*schema.Column{llmRequestColumns[9]}},
		),
	}

	snapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "data", Type: field.TypeJSON},
	}
	snapshotsSchema = &schema.Table{
		Name:       snapshotsTable,
		Columns:    snapshotsColumns,
		PrimaryKey: []*schema.Column{snapshotsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "snapshot_timestamp", Columns: []*schema.Column{snapshotsColumns[2]}},
			{Name: "snapshot_sequence", Columns: []*schema.Column{snapshotsColumns[1]}},
		},
	}

	tables = []*schema.Table{
		usersSchema,
		classificationSchema,
		contentSchema,
		simulationSchema,
		feedbackSchema,
		llmRequestSchema,
		snapshotsSchema,
	}
)

func init() {
	classificationSchema.ForeignKeys[0].RefTable = usersSchema
	contentSchema.ForeignKeys[0].RefTable = usersSchema
	simulationSchema.ForeignKeys[0].RefTable = usersSchema
}
