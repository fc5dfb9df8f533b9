package common

const (
	// API_CREATE is used to create a task; the web hook is given by the
	// "url" query parameter and the request body becomes the delivery body
	API_CREATE = "/"

	// API_TASKS is the prefix under which tasks are found
	API_TASKS = "/tasks"

	// API_TASK is used to get a single task
	API_TASK = API_TASKS + "/{id}"

	// API_HEALTH reports the server is up
	API_HEALTH = "/healthz"

	// HEADER_PREFIX marks request headers passed through to the web hook,
	// minus the prefix
	HEADER_PREFIX = "X-Torque-Header-"

	// HEADER_API_KEY carries an API key, as an alternative to a bearer token
	HEADER_API_KEY = "X-Torque-Api-Key"

	// PARAM_URL & PARAM_TIMEOUT are query parameters of API_CREATE
	PARAM_URL     = "url"
	PARAM_TIMEOUT = "timeout"
)
