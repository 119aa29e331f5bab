package common

// MaxFeedbackRequestBody limits JSON request bodies for feedback endpoints.
const MaxFeedbackRequestBody = 1 << 20
