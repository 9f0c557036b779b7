package templates

import "testing"

func parseJobFixture(t *testing.T) *TemplateSet {
	t.Helper()
	set, err := ParseJobTemplates(RawJobBundle{
		Templates:   []byte(jobTemplatesJSON),
		UserPrompts: []byte(userPromptsJSON),
		Resources:   []byte(jobResourcesJSON),
	})
	if err != nil {
		t.Fatalf("ParseJobTemplates() error: %v", err)
	}
	return set
}

func TestParseJobTemplates_ResolvesInputsCaseInsensitively(t *testing.T) {
	set := parseJobFixture(t)
	tmpl := set.Template("HttpTrigger-Python")
	if tmpl == nil {
		t.Fatal("HttpTrigger-Python not parsed")
	}
	if tmpl.SchemaVersion != SchemaV2 {
		t.Errorf("SchemaVersion = %q", tmpl.SchemaVersion)
	}

	job := tmpl.Job("create new project")
	if job == nil {
		t.Fatal("job lookup should ignore case")
	}
	if job.Type != JobCreateNewApp {
		t.Errorf("job type = %q", job.Type)
	}
	if len(job.Inputs) != 2 {
		t.Fatalf("got %d inputs, want 2", len(job.Inputs))
	}

	name := job.Inputs[0]
	if name.ID != "trigger-functionName" {
		t.Errorf("input id = %q", name.ID)
	}
	if name.AssignTo != "$(FUNCTION_NAME_INPUT)" {
		t.Errorf("AssignTo = %q", name.AssignTo)
	}
	if name.DefaultValue != "http_trigger" {
		t.Errorf("job-level default not applied: %q", name.DefaultValue)
	}
	if name.Label != "Function name" {
		t.Errorf("Label = %q", name.Label)
	}
	if err := name.Validate("1bad"); err == nil || err.Error() != "Function names must start with a letter" {
		t.Errorf("Validate(1bad) = %v", err)
	}

	auth := job.Inputs[1]
	if auth.ValueType != ValueEnum || len(auth.Enums) != 2 {
		t.Errorf("auth input = %+v", auth)
	}
	if !auth.Required {
		t.Error("job-level required override not applied")
	}
	if auth.DefaultValue != "FUNCTION" {
		t.Errorf("catalogue default lost: %q", auth.DefaultValue)
	}

	// The catalogue entry itself is untouched by job overrides.
	other := tmpl.Job("Append to file").Inputs[0]
	if other.AssignTo != "$(SELECTED_FILEPATH)" {
		t.Errorf("second job input AssignTo = %q", other.AssignTo)
	}
}

func TestParseJobTemplates_ActionsFollowJobOrder(t *testing.T) {
	set := parseJobFixture(t)
	tmpl := set.Template("HttpTrigger-Python")

	if len(tmpl.Actions) != 4 || tmpl.Actions[0].Name != "readFileContent_FunctionApp" {
		t.Fatalf("catalogue order not preserved: %+v", tmpl.Actions)
	}

	job := tmpl.Jobs[0]
	if len(job.Actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(job.Actions))
	}
	if job.Actions[0].Name != "writeFile_FunctionApp" || job.Actions[1].Name != "readFileContent_FunctionApp" {
		t.Errorf("job actions = [%s %s], want job declaration order", job.Actions[0].Name, job.Actions[1].Name)
	}
	if job.Actions[0].ErrorText != "Could not write the function app file" {
		t.Errorf("ErrorText = %q", job.Actions[0].ErrorText)
	}

	appendJob := tmpl.Jobs[1]
	if appendJob.Condition == nil || appendJob.Condition.Name != "$(SELECTED_FILEPATH)" || !appendJob.Condition.HasValue {
		t.Errorf("Condition = %+v", appendJob.Condition)
	}
	if !appendJob.Actions[1].ContinueOnError {
		t.Error("ContinueOnError lost")
	}
}

func TestParseJobTemplates_DropsUnresolvableTemplates(t *testing.T) {
	set := parseJobFixture(t)

	if set.Template("TimerTrigger-Python") != nil {
		t.Error("template with unknown action reference should be dropped")
	}
	if set.Template("BadActionType-Python") != nil {
		t.Error("template with unknown action type should be dropped")
	}
	if len(set.FunctionTemplates) != 3 {
		t.Errorf("got %d templates, want 3", len(set.FunctionTemplates))
	}
	// One prompt without an id, two templates.
	if set.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", set.Skipped)
	}
}

func TestParseJobTemplates_Classification(t *testing.T) {
	set := parseJobFixture(t)

	tests := []struct {
		id   string
		kind string
	}{
		{"HttpTrigger-Python", "http"},
		{"MCPToolTrigger-Python", "mcp"},
		{"McpTrigger-TypeScript", "mcp"},
	}
	for _, tt := range tests {
		tmpl := set.Template(tt.id)
		if tmpl == nil {
			t.Fatalf("%s not parsed", tt.id)
		}
		if got := tmpl.TriggerKind(); got != tt.kind {
			t.Errorf("%s: TriggerKind() = %q, want %q", tt.id, got, tt.kind)
		}
	}
}

func TestParseJobTemplates_UnknownInputDropsTemplate(t *testing.T) {
	templates := `[{
	  "id": "HttpTrigger-Python", "name": "HTTP", "language": "Python",
	  "jobs": [{"name": "j", "type": "CreateNewApp", "inputs": [{"paramId": "nope", "assignTo": "$(X)"}], "actions": []}],
	  "actions": [], "files": {}
	}]`
	_, err := ParseJobTemplates(RawJobBundle{Templates: []byte(templates), UserPrompts: []byte(userPromptsJSON)})
	if err != ErrNoTemplates {
		t.Errorf("err = %v, want ErrNoTemplates", err)
	}
}
