package service

import "fmt"

func welcomeEmailTemplate(username, appURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your training log is ready. Record your first workout here:
%s

Best,
The %s Team`, username, appURL, appName)

	return subject, body
}

func accountDeletedEmailTemplate(username, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s account has been deleted", appName)
	body := fmt.Sprintf(`Hi %s,

Your account and all of its workouts and goals have been removed by an administrator.

If you believe this is a mistake, reply to this email.

Best,
The %s Team`, username, appName)

	return subject, body
}
