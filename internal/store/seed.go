package store

// SeedBank is the default question bank, loaded on first start when the
// question table is empty.
var SeedBank = []Question{
	// Technical software engineering.
	{
		Text:             "Explain the difference between REST and GraphQL APIs",
		InterviewType:    "technical_software",
		Difficulty:       "medium",
		Category:         "web_development",
		ExpectedKeywords: []string{"REST", "GraphQL", "HTTP", "query", "endpoint"},
	},
	{
		Text:             "What is the time complexity of binary search and explain how it works?",
		InterviewType:    "technical_software",
		Difficulty:       "medium",
		Category:         "algorithms",
		ExpectedKeywords: []string{"O(log n)", "divide", "conquer", "sorted", "array"},
	},
	{
		Text:             "Describe how you would design a URL shortener like bit.ly",
		InterviewType:    "technical_software",
		Difficulty:       "hard",
		Category:         "system_design",
		ExpectedKeywords: []string{"hashing", "database", "scalability", "redirect", "unique"},
	},
	{
		Text:             "Explain the concept of database indexing and when you would use it",
		InterviewType:    "technical_software",
		Difficulty:       "medium",
		Category:         "databases",
		ExpectedKeywords: []string{"B-tree", "performance", "query", "primary key", "foreign key"},
	},
	{
		Text:             "What are the SOLID principles in object-oriented programming?",
		InterviewType:    "technical_software",
		Difficulty:       "medium",
		Category:         "programming_concepts",
		ExpectedKeywords: []string{"single responsibility", "open-closed", "liskov", "interface", "dependency"},
	},
	{
		Text:             "Explain the difference between var, let, and const in JavaScript",
		InterviewType:    "technical_software",
		Difficulty:       "easy",
		Category:         "javascript",
		ExpectedKeywords: []string{"scope", "hoisting", "block scope", "immutable", "redeclaration"},
	},
	{
		Text:             "What is a closure in JavaScript and provide an example?",
		InterviewType:    "technical_software",
		Difficulty:       "medium",
		Category:         "javascript",
		ExpectedKeywords: []string{"closure", "lexical scope", "function", "encapsulation", "private variables"},
	},
	{
		Text:             "Explain the concept of microservices architecture",
		InterviewType:    "technical_software",
		Difficulty:       "hard",
		Category:         "system_design",
		ExpectedKeywords: []string{"microservices", "monolith", "distributed", "independence", "communication"},
	},
	{
		Text:             "What is the difference between SQL and NoSQL databases?",
		InterviewType:    "technical_software",
		Difficulty:       "easy",
		Category:         "databases",
		ExpectedKeywords: []string{"SQL", "NoSQL", "relational", "document", "scalability"},
	},
	{
		Text:             "Implement a function to reverse a linked list",
		InterviewType:    "technical_software",
		Difficulty:       "medium",
		Category:         "data_structures",
		ExpectedKeywords: []string{"linked list", "pointer", "iteration", "recursion", "reverse"},
	},

	// Behavioral.
	{
		Text:             "Tell me about a time you faced a difficult technical challenge and how you overcame it",
		InterviewType:    "behavioral",
		Difficulty:       "medium",
		Category:         "problem_solving",
		ExpectedKeywords: []string{"challenge", "approach", "solution", "result", "learned"},
	},
	{
		Text:             "Describe a situation where you had to work with a difficult team member",
		InterviewType:    "behavioral",
		Difficulty:       "medium",
		Category:         "teamwork",
		ExpectedKeywords: []string{"communication", "conflict", "resolution", "collaboration", "outcome"},
	},
	{
		Text:             "What is your greatest professional achievement to date?",
		InterviewType:    "behavioral",
		Difficulty:       "easy",
		Category:         "achievements",
		ExpectedKeywords: []string{"project", "impact", "role", "success", "proud"},
	},
	{
		Text:             "Tell me about a time when you had to learn a new technology quickly",
		InterviewType:    "behavioral",
		Difficulty:       "easy",
		Category:         "learning_agility",
		ExpectedKeywords: []string{"learning", "new technology", "quickly", "approach", "application"},
	},
	{
		Text:             "Describe a time when you had to make a decision with incomplete information",
		InterviewType:    "behavioral",
		Difficulty:       "hard",
		Category:         "decision_making",
		ExpectedKeywords: []string{"decision", "incomplete", "analysis", "risk", "outcome"},
	},
	{
		Text:             "Tell me about a time when you disagreed with your manager",
		InterviewType:    "behavioral",
		Difficulty:       "hard",
		Category:         "conflict_resolution",
		ExpectedKeywords: []string{"disagreement", "manager", "perspective", "resolution", "professional"},
	},
	{
		Text:             "Describe a project where you had to collaborate with multiple stakeholders",
		InterviewType:    "behavioral",
		Difficulty:       "medium",
		Category:         "collaboration",
		ExpectedKeywords: []string{"stakeholders", "collaboration", "communication", "coordination", "success"},
	},
	{
		Text:             "Tell me about a mistake you made and how you handled it",
		InterviewType:    "behavioral",
		Difficulty:       "medium",
		Category:         "accountability",
		ExpectedKeywords: []string{"mistake", "responsibility", "corrective action", "learning", "prevention"},
	},

	// Company-specific.
	{
		Text:             "How would you find the kth largest element in an unsorted array?",
		InterviewType:    "technical_software",
		Difficulty:       "hard",
		Company:          "google",
		Category:         "algorithms",
		ExpectedKeywords: []string{"quickselect", "heap", "partition", "O(n)", "average"},
	},
	{
		Text:             "Design a recommendation system for YouTube videos",
		InterviewType:    "technical_software",
		Difficulty:       "hard",
		Company:          "google",
		Category:         "system_design",
		ExpectedKeywords: []string{"collaborative filtering", "machine learning", "scalability", "personalization"},
	},
	{
		Text:             "Why do you want to work at Google?",
		InterviewType:    "behavioral",
		Difficulty:       "easy",
		Company:          "google",
		Category:         "company_fit",
		ExpectedKeywords: []string{"innovation", "scale", "impact", "technology", "mission"},
	},
	{
		Text:             "Design a distributed cache system",
		InterviewType:    "technical_software",
		Difficulty:       "hard",
		Company:          "amazon",
		Category:         "system_design",
		ExpectedKeywords: []string{"distributed", "cache", "consistency", "sharding", "replication"},
	},
	{
		Text:             "Tell me about a time when you had to work with limited resources",
		InterviewType:    "behavioral",
		Difficulty:       "medium",
		Company:          "amazon",
		Category:         "frugality",
		ExpectedKeywords: []string{"limited resources", "creativity", "efficiency", "priorities", "outcome"},
	},
}
