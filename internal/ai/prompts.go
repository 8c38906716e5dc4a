package ai

const chunkSummaryPrompt = `Summarize the following news text in plain prose between %d and %d words.
Keep names, figures and dates. Return only the summary.

%s`

const articleSummaryPrompt = `You are given a news article about a company.
Write a concise, factual summary of it in 3 to 5 sentences. Return only the summary text.

Title: %s

Article:
%s`

const sentimentPrompt = `Rate the sentiment of the following news summary toward the company it discusses.
Return JSON only: {"score": <float from -1.0 (very negative) to 1.0 (very positive)>}

Text: %s`

const overviewPrompt = `Below are summaries of recent news articles about one company.
Write a short markdown overview with a heading, 3-6 bullet points of the key developments,
and a closing sentence on the overall tone of coverage.

%s`

const comparisonPrompt = `Below are summaries of recent news articles about one company, each with a sentiment label.
Write a markdown comparative analysis that:
- groups the articles by theme,
- contrasts how positive and negative coverage differ,
- notes which topics appear in several articles,
- ends with a one-paragraph conclusion on likely market perception.

%s`
