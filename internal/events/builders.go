package events

import (
	"context"
	"fmt"

	"hub-notifier/internal/domain"
)

func buildNewProject(ctx context.Context, r *Router, req request) (Composition, error) {
	projectID, err := req.params.required(DataProjectID)
	if err != nil {
		return Composition{}, err
	}
	name, err := r.projectName(ctx, projectID)
	if err != nil {
		return Composition{}, err
	}
	return Composition{
		Notification: domain.Notification{
			Title: req.msg.NewProjectTitle,
			Body:  fmt.Sprintf(req.msg.NewProjectBody, req.senderName, name),
			Data:  map[string]string{DataProjectID: projectID},
		},
		Recipients: domain.DefaultRecipients(),
	}, nil
}

func buildNewBug(ctx context.Context, r *Router, req request) (Composition, error) {
	bugID, err := req.params.required(DataBugID)
	if err != nil {
		return Composition{}, err
	}
	bug, projectName, err := r.bugWithProject(ctx, bugID)
	if err != nil {
		return Composition{}, err
	}
	return Composition{
		Notification: domain.Notification{
			Title: fmt.Sprintf(req.msg.NewBugTitle, projectName),
			Body:  fmt.Sprintf(req.msg.NewBugBody, req.senderName, bug.Title),
			Data:  bugData(bugID, bug),
		},
		Recipients: domain.DefaultRecipients(),
	}, nil
}

func buildBugUpdate(ctx context.Context, r *Router, req request) (Composition, error) {
	bugID, err := req.params.required(DataBugID)
	if err != nil {
		return Composition{}, err
	}
	bug, projectName, err := r.bugWithProject(ctx, bugID)
	if err != nil {
		return Composition{}, err
	}
	data := bugData(bugID, bug)
	if bug.Status != "" {
		data[DataBugStatus] = bug.Status
	}
	return Composition{
		Notification: domain.Notification{
			Title: fmt.Sprintf(req.msg.BugUpdateTitle, projectName),
			Body:  fmt.Sprintf(req.msg.BugUpdateBody, req.senderName, bug.Title, bug.Status),
			Data:  data,
		},
		Recipients: domain.DefaultRecipients(),
	}, nil
}

func buildNewChatMessage(ctx context.Context, r *Router, req request) (Composition, error) {
	projectID, err := req.params.required(DataProjectID)
	if err != nil {
		return Composition{}, err
	}
	message, err := req.params.required("message")
	if err != nil {
		return Composition{}, err
	}
	name, err := r.projectName(ctx, projectID)
	if err != nil {
		return Composition{}, err
	}
	return Composition{
		Notification: domain.Notification{
			Title: fmt.Sprintf(req.msg.ChatMessageTitle, name),
			Body:  fmt.Sprintf(req.msg.ChatMessageBody, req.senderName, truncateRunes(message, chatPreviewLength)),
			Data:  map[string]string{DataProjectID: projectID},
		},
		Recipients: domain.DefaultRecipients(),
	}, nil
}

func buildProjectUpdate(ctx context.Context, r *Router, req request) (Composition, error) {
	projectID, err := req.params.required(DataProjectID)
	if err != nil {
		return Composition{}, err
	}
	name, err := r.projectName(ctx, projectID)
	if err != nil {
		return Composition{}, err
	}
	return Composition{
		Notification: domain.Notification{
			Title: req.msg.ProjectUpdateTitle,
			Body:  fmt.Sprintf(req.msg.ProjectUpdateBody, req.senderName, name),
			Data:  map[string]string{DataProjectID: projectID},
		},
		Recipients: domain.DefaultRecipients(),
	}, nil
}

// Тестовая рассылка уходит обычному набору получателей, а не всему хабу.
func buildTestBroadcast(_ context.Context, _ *Router, req request) (Composition, error) {
	return Composition{
		Notification: domain.Notification{
			Title: req.msg.TestBroadcastTitle,
			Body:  fmt.Sprintf(req.msg.TestBroadcastBody, req.sender.HubID),
		},
		Recipients: domain.DefaultRecipients(),
	}, nil
}

func buildPermissionsUpdate(ctx context.Context, r *Router, req request) (Composition, error) {
	return buildTargeted(ctx, r, req, req.msg.PermissionsUpdateTitle, req.msg.PermissionsUpdateBody)
}

func buildMemberRemoved(ctx context.Context, r *Router, req request) (Composition, error) {
	return buildTargeted(ctx, r, req, req.msg.MemberRemovedTitle, req.msg.MemberRemovedBody)
}

func buildTargeted(ctx context.Context, r *Router, req request, title, body string) (Composition, error) {
	memberID, err := req.params.required(DataMemberID)
	if err != nil {
		return Composition{}, err
	}
	userID, err := r.targetUser(ctx, req.sender.HubID, memberID)
	if err != nil {
		return Composition{}, err
	}
	return Composition{
		Notification: domain.Notification{
			Title: title,
			Body:  body,
			Data:  map[string]string{DataMemberID: memberID},
		},
		Recipients: domain.SingleRecipient(userID),
	}, nil
}

func buildBroadcast(_ context.Context, _ *Router, req request) (Composition, error) {
	title, err := req.params.optional("title", req.msg.BroadcastTitle)
	if err != nil {
		return Composition{}, err
	}
	body, err := req.params.optional("body", fmt.Sprintf(req.msg.BroadcastBody, req.sender.HubID))
	if err != nil {
		return Composition{}, err
	}
	return Composition{
		Notification: domain.Notification{Title: title, Body: body},
		Recipients:   domain.EntireHub(),
	}, nil
}

func bugData(bugID string, bug domain.Bug) map[string]string {
	data := map[string]string{DataBugID: bugID}
	if bug.ProjectID != "" {
		data[DataProjectID] = bug.ProjectID
	}
	return data
}
