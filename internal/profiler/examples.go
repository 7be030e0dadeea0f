package profiler

// ExamplePitches are sample product descriptions offered to first-time users.
var ExamplePitches = []string{
	"A B2B SaaS tool that helps remote engineering teams automate their daily standups via Slack.",
	"An organic, high-protein meal replacement shake designed for busy parents.",
	"A freelance marketplace specifically for AI prompt engineers and specialized data labelers.",
}
