package feedback

import (
	"fmt"
	"testing"

	apperrors "github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster() types.Roster {
	return types.Roster{
		Individuals: []types.Individual{
			{Name: "A"},
			{Name: "B"},
			{Name: "Akhila", Designation: "Paralegal"},
		},
		Services:          []string{"Immigration", "Tax"},
		TitleOptions:      []string{"Mr.", "Ms.", "Dr."},
		FeedbackQuestions: []string{"How did you hear about us?"},
		NewsletterOptions: []string{"Yes", "No"},
	}
}

func rated(d types.Draft, name string, v int) types.Draft {
	for _, dim := range types.RatingDimensions {
		d = d.WithRating(dim, name, v)
	}
	return d.WithFeedbackFor(name, "Great work from "+name)
}

func validDraft(individuals ...string) types.Draft {
	d := types.Draft{}.
		WithTitle("Ms.").
		WithEmail("jane@example.com").
		WithName("Jane", "Doe").
		WithOrganizationName("Acme").
		WithPhoneNumber("555-0100").
		WithServices("Tax").
		WithIndividuals(individuals...).
		WithCustomResponse("How did you hear about us?", "A friend").
		WithRecommend(types.RecommendYes).
		WithNewsletter(types.NewsletterNo).
		WithTerms(true)
	for _, name := range individuals {
		d = rated(d, name, 4)
	}
	return d
}

func TestValidate_ValidDraftIsEmpty(t *testing.T) {
	errs := Validate(validDraft("A", "B"), testRoster(), types.AllCapabilities())
	assert.True(t, errs.Empty(), "unexpected failures: %v", errs)
	assert.NoError(t, errs.Err())
}

func TestValidate_MissingScalarFields(t *testing.T) {
	tests := []struct {
		name  string
		draft types.Draft
		key   string
	}{
		{"blank title", validDraft("A").WithTitle("  "), KeyTitle},
		{"unknown title", validDraft("A").WithTitle("Sir"), KeyTitle},
		{"blank email", validDraft("A").WithEmail(""), KeyEmail},
		{"email without at", validDraft("A").WithEmail("jane.example.com"), KeyEmail},
		{"blank first name", validDraft("A").WithName(" ", "Doe"), KeyFirstName},
		{"blank last name", validDraft("A").WithName("Jane", ""), KeyLastName},
		{"blank organization", validDraft("A").WithOrganizationName("\t"), KeyOrganizationName},
		{"blank phone", validDraft("A").WithPhoneNumber(""), KeyPhoneNumber},
		{"no services", validDraft("A").WithServices(), KeyServices},
		{"no recommendation", validDraft("A").WithRecommend(""), KeyRecommend},
		{"bad recommendation", validDraft("A").WithRecommend("Sure"), KeyRecommend},
		{"no newsletter choice", validDraft("A").WithNewsletter(""), KeySubscribeNewsletter},
		{"terms not accepted", validDraft("A").WithTerms(false), KeyTermsAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.draft, testRoster(), types.AllCapabilities())
			assert.Equal(t, []string{tt.key}, errs.Keys())
		})
	}
}

func TestValidate_ReportsEveryFailureInOnePass(t *testing.T) {
	errs := Validate(types.Draft{}, testRoster(), types.AllCapabilities())

	assert.ElementsMatch(t, []string{
		KeyTitle, KeyEmail, KeyFirstName, KeyLastName, KeyOrganizationName, KeyPhoneNumber,
		KeyServices, KeyIndividuals, "customResponses-How did you hear about us?",
		KeyRecommend, KeySubscribeNewsletter, KeyTermsAccepted,
	}, errs.Keys())
}

func TestValidate_CapabilitiesDisableOptionalFields(t *testing.T) {
	d := validDraft("A").
		WithTitle("").
		WithNewsletter("").
		WithTerms(false).
		WithFeedbackFor("A", "")

	errs := Validate(d, testRoster(), types.Capabilities{})
	assert.True(t, errs.Empty(), "unexpected failures: %v", errs)
}

func TestValidate_PerIndividualEntries(t *testing.T) {
	for n := 1; n <= 3; n++ {
		names := []string{"A", "B", "Akhila (Paralegal)"}[:n]
		t.Run(fmt.Sprintf("%d individuals", n), func(t *testing.T) {
			bare := validDraft().WithIndividuals(names...)

			withText := Validate(bare, testRoster(), types.AllCapabilities())
			assert.Len(t, withText, 4*n)

			withoutText := Validate(bare, testRoster(), types.Capabilities{})
			assert.Len(t, withoutText, 3*n)
		})
	}
}

func TestValidate_OmittingOneEntryIsIsolated(t *testing.T) {
	full := validDraft("A", "B")

	for _, dim := range types.RatingDimensions {
		for _, name := range []string{"A", "B"} {
			d := full.Clone()
			switch dim {
			case types.DimensionProfessionalism:
				d.Professionalism = d.Professionalism.Delete(name)
			case types.DimensionResponseTime:
				d.ResponseTime = d.ResponseTime.Delete(name)
			case types.DimensionOverallServices:
				d.OverallServices = d.OverallServices.Delete(name)
			}

			errs := Validate(d, testRoster(), types.AllCapabilities())
			assert.Equal(t, []string{FieldKey(string(dim), name)}, errs.Keys())
		}
	}

	d := full.Clone()
	d.Feedbacks = d.Feedbacks.Delete("B")
	errs := Validate(d, testRoster(), types.AllCapabilities())
	assert.Equal(t, []string{"feedback-B"}, errs.Keys())
	assert.Equal(t, "Feedback for B is required", errs["feedback-B"])
}

func TestValidate_RatingRange(t *testing.T) {
	d := validDraft("A").
		WithRating(types.DimensionProfessionalism, "A", 0).
		WithRating(types.DimensionResponseTime, "A", 6)

	errs := Validate(d, testRoster(), types.AllCapabilities())
	assert.ElementsMatch(t, []string{"professionalism-A", "responseTime-A"}, errs.Keys())
	assert.Contains(t, errs["professionalism-A"], "between 1 and 5")
}

func TestValidate_NonNumericRatingFromJSONIsMissing(t *testing.T) {
	d := validDraft("A")
	d.Professionalism = nil
	require.NoError(t, d.Professionalism.UnmarshalJSON([]byte(`{"A": "excellent"}`)))

	errs := Validate(d, testRoster(), types.AllCapabilities())
	assert.Equal(t, []string{"professionalism-A"}, errs.Keys())
	assert.Equal(t, "Professionalism rating for A is required", errs["professionalism-A"])
}

func TestValidate_UnknownIndividualIsReported(t *testing.T) {
	roster := testRoster()
	roster.Individuals = []types.Individual{{Name: "A"}, {Name: "B"}}

	errs := Validate(validDraft("A", "C"), roster, types.AllCapabilities())
	assert.Equal(t, []string{"individuals-C"}, errs.Keys())
	assert.Equal(t, "C is not in the current staff roster", errs["individuals-C"])
}

func TestValidate_DuplicateIndividual(t *testing.T) {
	d := validDraft("A")
	d.Individuals = []string{"A", "A"}

	errs := Validate(d, testRoster(), types.AllCapabilities())
	assert.Equal(t, []string{"individuals-A"}, errs.Keys())
}

func TestValidate_SamePersonByNameAndLabel(t *testing.T) {
	d := validDraft("Akhila", "Akhila (Paralegal)")

	errs := Validate(d, testRoster(), types.AllCapabilities())
	require.Contains(t, errs, "individuals-Akhila (Paralegal)")
	assert.Equal(t, "Akhila (Paralegal) was selected more than once", errs["individuals-Akhila (Paralegal)"])
	assert.NotContains(t, errs, "individuals-Akhila")
}

func TestValidate_SelectionsAreTrimmed(t *testing.T) {
	d := validDraft(" A ")
	require.True(t, Validate(d, testRoster(), types.AllCapabilities()).Empty())

	c := ToContent(d, types.AllCapabilities())
	assert.Equal(t, []string{"A"}, c.Individuals)
	assert.Equal(t, []string{"A"}, c.Professionalism.Names())
	assert.Equal(t, "A: Great work from  A", c.Feedback)

	dup := validDraft("A")
	dup.Individuals = []string{"A", " A"}
	assert.Equal(t, []string{"individuals-A"}, Validate(dup, testRoster(), types.AllCapabilities()).Keys())
}

func TestValidate_StrayRatingKeys(t *testing.T) {
	d := validDraft("A").WithRating(types.DimensionOverallServices, "B", 3)

	errs := Validate(d, testRoster(), types.AllCapabilities())
	assert.Equal(t, []string{"overallServices-B"}, errs.Keys())
}

func TestValidate_UnknownService(t *testing.T) {
	d := validDraft("A").WithServices("Tax", "Litigation")

	errs := Validate(d, testRoster(), types.AllCapabilities())
	assert.Equal(t, []string{"services-Litigation"}, errs.Keys())
}

func TestValidate_EveryCustomQuestionRequired(t *testing.T) {
	roster := testRoster()
	roster.FeedbackQuestions = []string{"Q1", "Q2", " "}

	d := validDraft("A").WithCustomResponse("Q1", "answer")
	errs := Validate(d, roster, types.AllCapabilities())
	assert.Equal(t, []string{"customResponses-Q2"}, errs.Keys())
}

func TestValidationErrors_Err(t *testing.T) {
	errs := ValidationErrors{"email": "Email is required"}

	err := errs.Err()
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ValidationError, appErr.Type)
	assert.Equal(t, 400, appErr.HTTPStatus)
	assert.Equal(t, "Email is required", appErr.Fields["email"])
	assert.Equal(t, SubmitFailedMessage, appErr.Message)
}

func TestValidateContent_SkipsRosterMembership(t *testing.T) {
	c := ToContent(validDraft("Former Staff"), types.AllCapabilities())
	assert.True(t, ValidateContent(c).Empty())

	c.Professionalism = c.Professionalism.Set("Former Staff", 9)
	c.Recommend = "Perhaps"
	errs := ValidateContent(c)
	assert.ElementsMatch(t, []string{"professionalism-Former Staff", KeyRecommend}, errs.Keys())
}

func TestToContent(t *testing.T) {
	d := validDraft("B", "A").
		WithEmail("  jane@example.com ").
		WithFeedbackFor("A", "x").
		WithFeedbackFor("B", "y")

	c := ToContent(d, types.AllCapabilities())
	assert.Equal(t, "jane@example.com", c.Email)
	assert.Equal(t, []string{"B", "A"}, c.Individuals)
	assert.Equal(t, "B: y | A: x", c.Feedback)
	assert.Equal(t, "Ms.", c.Title)
	assert.Equal(t, "No", c.SubscribeNewsletter)

	single := ToContent(types.Draft{}.WithFeedback(" plain text "), types.Capabilities{})
	assert.Equal(t, "plain text", single.Feedback)
	assert.Empty(t, single.Title)
}
