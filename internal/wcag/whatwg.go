package wcag

const (
	imgAltMessage    = "Image elements should have an alt attribute."
	imgAltSuggestion = "Please add an 'alt' attribute to your image element to ensure accessibility: <img src='...' alt=>"
)

// whatwgRules maps html-validate rule ids.
var whatwgRules = []RuleMapping{
	{
		RuleID:       "area-alt",
		Citation:     "WCAG 2.2 | 1.1.1, 2.4.4, 2.4.9",
		ErrorMessage: "'alt' attribute must be set and non-empty when the 'href' attribute is present (area-alt)",
		Suggestion:   "Please add an 'alt' and 'href' attribute to your area element to ensure accessibility.",
	},
	{
		RuleID:       "aria-hidden-body",
		Citation:     "WCAG 2.2 | 1.3.1",
		ErrorMessage: "aria-hidden must not be used on <body>",
		Suggestion:   "Please do not use aria-hidden attribute in the <body> element",
	},
	{
		RuleID:       "aria-label-misuse",
		Citation:     "WCAG 2.2 | 4.1.2",
		ErrorMessage: "'aria-label' cannot be used on this element",
		Suggestion:   "Please do not use aria-label on this element",
	},
	{
		RuleID:       "empty-heading",
		Citation:     "WCAG 2.2 | 2.4.6",
		ErrorMessage: "Headings cannot be empty.",
		Suggestion:   "Please make sure to provide descriptive headings for your content.",
	},
	{
		RuleID:       "empty-title",
		Citation:     "WCAG 2.2 | 2.4.2",
		ErrorMessage: "Title cannot be empty.",
		Suggestion:   "Please make sure to provide a descriptive title",
	},
	{
		RuleID:       "hidden-focusable",
		Citation:     "WCAG 2.2 | 2.4.3, 4.1.2",
		ErrorMessage: "aria-hidden cannot be used on focusable elements",
		Suggestion:   "Please remove aria-hidden or remove the element",
	},
	{
		RuleID:       "input-missing-label",
		Citation:     "WCAG 2.2 | 1.1.1",
		ErrorMessage: "Input is missing a label",
		Suggestion:   "Please add a label attribute to your input.",
	},
	{
		RuleID:       "meta-refresh",
		Citation:     "WCAG 2.2 | 2.2.1, 2.2.4, 3.2.5",
		ErrorMessage: "Meta refresh should either be instant or not be used.",
		Suggestion:   "Please remove it if not necessary or set it to 0 seconds.",
	},
	{
		RuleID:       "multiple-labeled-controls",
		Citation:     "WCAG 2.2 | 1.3.1, 4.1.2",
		ErrorMessage: "Label must not be associated with multiple controls.",
		Suggestion:   "Please make sure that each label is associated with only one control.",
	},
	{
		RuleID:       "no-autoplay",
		Citation:     "WCAG 2.2 | 1.4.2, 2.2.2",
		ErrorMessage: "Autoplay should not be used as it can be disruptive to users.",
		Suggestion:   "Please remove the autoplay attribute from your media element.",
	},
	{
		RuleID:       "wcag/h30",
		Citation:     "WCAG 2.2 | 1.1.1, 2.4.4, 2.4.9",
		ErrorMessage: "Anchor link must have a text describing its purpose.",
		Suggestion:   "Please add either an 'alt' tribute inside your anchor link or a text describing it.",
	},
	{
		RuleID:       "wcag/h32",
		Citation:     "WCAG 2.2 | 3.2.2",
		ErrorMessage: "Form elements must have a submit button",
		Suggestion:   "Please add submit button on your form group.",
	},
	{
		RuleID:       "wcag/h36",
		Citation:     "WCAG 2.2 | 1.1.1",
		ErrorMessage: "Images used as submit buttons should have a non-empty alt attribute.",
		Suggestion:   "Please add an 'alt' attribute to your image element to ensure accessibility: <img src='...' alt='Submit button'>",
	},
	{
		RuleID:       "wcag/h37",
		Citation:     "WCAG 2.2 | 1.1.1",
		ErrorMessage: imgAltMessage,
		Suggestion:   imgAltSuggestion,
	},
	{
		RuleID:       "wcag/h63",
		Citation:     "WCAG 2.2 | 1.3.1",
		ErrorMessage: "Header elements must have content and be properly nested.",
		Suggestion:   "Please add a valid scope attribute (row, col, rowgroup, colgroup) to your header element.",
	},
	{
		RuleID:       "wcag/h67",
		Citation:     "WCAG 2.2 | 1.1.1",
		ErrorMessage: imgAltMessage,
		Suggestion:   imgAltSuggestion,
	},
	{
		RuleID:       "wcag/h71",
		Citation:     "WCAG 2.2 | 1.3.1, 3.3.2",
		ErrorMessage: "Fieldset must contain a legend element.",
		Suggestion:   "Please add a <legend> element to your fieldset.",
	},
	{
		RuleID:       "long-title",
		Citation:     "WCAG 2.2 | 2.4.2",
		ErrorMessage: "Title text cannot be longer than 70 characters.",
		Suggestion:   "Please limit your webpage title to below 70 characters for better SEO.",
	},
	{
		RuleID:       "heading-level",
		Citation:     "WCAG 2.2 | 2.4.10",
		ErrorMessage: "Heading level can only increase by one.",
		Suggestion:   "Please check if your headings start at h1 and if it only increases one level at a time. (h1>h6)",
	},
}
