package research

var trendingTopics = []string{
	"Machine Learning and AI",
	"Data Science",
	"Cybersecurity",
	"Blockchain Technology",
	"Quantum Computing",
	"Web Development",
	"Mobile App Development",
	"Cloud Computing",
	"Digital Marketing",
	"UX/UI Design",
}

// TrendingTopics returns a curated list of popular study topics
func TrendingTopics() []string {
	out := make([]string, len(trendingTopics))
	copy(out, trendingTopics)
	return out
}
