package wcag

const (
	tagClosingMessage    = "Element must have a proper opening/closing tag."
	tagClosingSuggestion = "Please add the appropriate HTML tag to complete."
	titleEmptyMessage    = "Element title cannot be empty, must have text content"
	titleEmptySuggestion = "Please add a descriptive title to your content."
	labelSuggestion      = "Please add a label attribute to your input."
)

// w3cRules maps fragments of Nu checker messages. Lookup is by substring and
// the first entry wins, so more specific fragments must come first.
var w3cRules = []RuleMapping{
	{
		RuleID:       "An “img” element must have an “alt” attribute",
		Citation:     "WCAG 2.2 | 1.1.1",
		ErrorMessage: imgAltMessage,
		Suggestion:   imgAltSuggestion,
	},
	{
		RuleID:       "Unclosed element",
		Citation:     "WCAG 2.2 | 4.1.1",
		ErrorMessage: tagClosingMessage,
		Suggestion:   tagClosingSuggestion,
	},
	{
		RuleID:       "Stray end tag",
		Citation:     "WCAG 2.2 | 4.1.1",
		ErrorMessage: tagClosingMessage,
		Suggestion:   tagClosingSuggestion,
	},
	{
		RuleID:       "Duplicate ID",
		Citation:     "WCAG 2.2 | 4.1.1",
		ErrorMessage: "Element must have unique IDs.",
		Suggestion:   "Please make sure all your attributes have different and unique IDs.",
	},
	{
		RuleID:       "Element “title” must not be empty.",
		Citation:     "WCAG 2.2 | 2.4.2",
		ErrorMessage: titleEmptyMessage,
		Suggestion:   titleEmptySuggestion,
	},
	{
		RuleID:       "missing a required instance of child element",
		Citation:     "WCAG 2.2 | 2.4.2",
		ErrorMessage: titleEmptyMessage,
		Suggestion:   titleEmptySuggestion,
	},
	{
		RuleID:       "Consider adding a “lang” attribute to the “html” start tag to declare the language of this document.",
		Citation:     "WCAG 2.2 | 3.1.1",
		ErrorMessage: "You must programatically define the primary language of each page.",
		Suggestion:   "Please add a lang attribute to the HTML tag and state the primary language.",
	},
	{
		RuleID:       "Element “area” is missing required attribute “alt”",
		Citation:     "WCAG 2.2 | 1.1.1",
		ErrorMessage: "'Area' elements should have an alt attribute.",
		Suggestion:   "Please add an 'alt' attribute to your area element to ensure accessibility.",
	},
	{
		RuleID:       "Element “area” is missing required attribute “href”",
		Citation:     "WCAG 2.2 | 1.1.1",
		ErrorMessage: "'Area' elements should have an href attribute.",
		Suggestion:   "Make sure there is an 'href' present in your area element.",
	},
	{
		RuleID:       "<input> element does not have a <label>",
		Citation:     "WCAG 2.2 | 1.1.1",
		ErrorMessage: "Input is missing a label",
		Suggestion:   labelSuggestion,
	},
	{
		RuleID:       "title text cannot be longer than 70 characters",
		Citation:     "WCAG 2.2 | 2.4.2",
		ErrorMessage: "Title text cannot be longer than 70 characters.",
		Suggestion:   "Please limit your webpage title to below 70 characters for better SEO.",
	},
	{
		RuleID:       "Anchor link must have a text describing its purpose",
		Citation:     "WCAG 2.2 | 2.4.4",
		ErrorMessage: "Anchor link must have a text describing its purpose.",
		Suggestion:   "Please add either an 'alt' tribute inside your anchor link or a text describing it.",
	},
	{
		RuleID:       "Empty Heading",
		Citation:     "WCAG 2.2 | 2.4.6",
		ErrorMessage: "Headings cannot be empty.",
		Suggestion:   "Please make sure to provide descriptive headings for your content.",
	},
	{
		RuleID:       "Heading level can only increase by one, expected <h2> but got <h3>",
		Citation:     "WCAG 2.2 | 2.4.10",
		ErrorMessage: "Heading level can only increase by one.",
		Suggestion:   "Please check if your headings start at h1 and if it only increases one level at a time. (h1>h6)",
	},
	{
		RuleID:       "<form> element must have a submit button",
		Citation:     "WCAG 2.2 | 3.2.2",
		ErrorMessage: "Form elements must have a submit button",
		Suggestion:   "Please add submit button on your form group.",
	},
	{
		RuleID:       "<textarea> element does not have a <label>",
		Citation:     "WCAG 2.2 | 3.3.2",
		ErrorMessage: "Textarea is missing a label",
		Suggestion:   labelSuggestion,
	},
	{
		RuleID:       "<select> element does not have a <label>",
		Citation:     "WCAG 2.2 | 3.3.2",
		ErrorMessage: "Select is missing a label",
		Suggestion:   labelSuggestion,
	},
}
