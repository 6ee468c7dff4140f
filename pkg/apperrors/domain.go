package apperrors

var (
	// Domain errors returned by services and mapped by controllers.
	ErrUnauthorized         = Unauthorized("unauthorized")
	ErrUserNotFound         = NotFound("user not found")
	ErrPostNotFound         = NotFound("post not found")
	ErrCommentNotFound      = NotFound("comment not found")
	ErrGroupNotFound        = NotFound("group not found")
	ErrDepartmentNotFound   = NotFound("department not found")
	ErrConversationNotFound = NotFound("conversation not found")
	ErrQuestionNotFound     = NotFound("question not found")
	ErrAnswerNotFound       = NotFound("answer not found")
	ErrDocNotFound          = NotFound("document not found")
	ErrNoQuizToday          = NotFound("no_quiz")
	ErrAlreadyAnswered      = Conflict("already_answered")
	ErrNotQuestionAuthor    = Forbidden("only the question author can accept an answer")
	ErrOwnQuestion          = Forbidden("you cannot answer your own question")
	ErrAmbiguousTarget      = InvalidArg("reaction must target exactly one of post, comment or answer")
	ErrUnknownEmoji         = InvalidArg("unknown emoji name")
	ErrSelfConversation     = InvalidArg("cannot start a conversation with yourself")
	ErrEmptyContent         = InvalidArg("content cannot be empty")
	ErrGenerationFailed     = Internal("generation failed")
)
