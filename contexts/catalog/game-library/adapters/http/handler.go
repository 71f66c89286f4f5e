package httpadapter

import (
	"context"
	"log/slog"

	"improvdb/contexts/catalog/game-library/application/commands"
	"improvdb/contexts/catalog/game-library/application/queries"
	"improvdb/contexts/catalog/game-library/domain/entities"
	"improvdb/contexts/catalog/game-library/ports"
	httptransport "improvdb/contexts/catalog/game-library/transport/http"
)

type Handler struct {
	Games    commands.GameUseCase
	Tags     commands.TagUseCase
	Metadata commands.MetadataUseCase
	Notes    commands.NoteUseCase
	Catalog  queries.CatalogQueries
	Logger   *slog.Logger
}

func (h Handler) CreateGameHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateGameRequest,
) (httptransport.GameResponse, error) {
	game, err := h.Games.CreateGame(ctx, commands.CreateGameCommand{
		Name:          req.Name,
		Description:   req.Description,
		DurationID:    req.DurationID,
		PlayerCountID: req.PlayerCountID,
		TagIDs:        req.TagIDs,
		UserID:        userID,
	})
	if err != nil {
		return httptransport.GameResponse{}, err
	}
	return gameResponse(game), nil
}

func (h Handler) DeleteGameHandler(ctx context.Context, gameID string, userID string) error {
	return h.Games.DeleteGame(ctx, gameID, userID)
}

func (h Handler) ListGamesHandler(
	ctx context.Context,
	filter ports.GameFilter,
	cursor string,
) (httptransport.GameListResponse, error) {
	page, err := h.Catalog.ListGames(ctx, filter, cursor)
	if err != nil {
		return httptransport.GameListResponse{}, err
	}
	items := make([]httptransport.GameResponse, 0, len(page.Items))
	for _, game := range page.Items {
		items = append(items, gameResponse(game))
	}
	return httptransport.GameListResponse{Items: items, Cursor: page.Cursor}, nil
}

func (h Handler) GetGameBySlugHandler(ctx context.Context, slug string) (httptransport.GameResponse, error) {
	game, err := h.Catalog.GetGameBySlug(ctx, slug)
	if err != nil {
		return httptransport.GameResponse{}, err
	}
	return gameResponse(game), nil
}

func (h Handler) CreateTagHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateTagRequest,
) (httptransport.TagResponse, error) {
	tag, err := h.Tags.CreateTag(ctx, req.Name, req.Description, userID)
	if err != nil {
		return httptransport.TagResponse{}, err
	}
	return httptransport.TagResponse{
		TagID:       tag.TagID,
		Name:        tag.Name,
		Description: tag.Description,
	}, nil
}

func (h Handler) DeleteTagHandler(ctx context.Context, tagID string, userID string) error {
	return h.Tags.DeleteTag(ctx, tagID, userID)
}

func (h Handler) ListTagsHandler(ctx context.Context) (httptransport.TagListResponse, error) {
	tags, err := h.Catalog.ListTags(ctx)
	if err != nil {
		return httptransport.TagListResponse{}, err
	}
	items := make([]httptransport.TagResponse, 0, len(tags))
	for _, tag := range tags {
		items = append(items, httptransport.TagResponse{
			TagID:       tag.TagID,
			Name:        tag.Name,
			Description: tag.Description,
		})
	}
	return httptransport.TagListResponse{Items: items}, nil
}

func (h Handler) CreateMetadataHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateMetadataRequest,
) (httptransport.MetadataResponse, error) {
	metadata, err := h.Metadata.CreateMetadata(ctx, commands.CreateMetadataCommand{
		Name:   req.Name,
		Type:   entities.MetadataType(req.Type),
		Min:    req.Min,
		Max:    req.Max,
		UserID: userID,
	})
	if err != nil {
		return httptransport.MetadataResponse{}, err
	}
	return metadataResponse(metadata), nil
}

func (h Handler) ListMetadataHandler(ctx context.Context, metadataType string) (httptransport.MetadataListResponse, error) {
	buckets, err := h.Catalog.ListMetadata(ctx, entities.MetadataType(metadataType))
	if err != nil {
		return httptransport.MetadataListResponse{}, err
	}
	items := make([]httptransport.MetadataResponse, 0, len(buckets))
	for _, metadata := range buckets {
		items = append(items, metadataResponse(metadata))
	}
	return httptransport.MetadataListResponse{Items: items}, nil
}

func (h Handler) AddNoteHandler(
	ctx context.Context,
	userID string,
	req httptransport.AddNoteRequest,
) (httptransport.NoteResponse, error) {
	note, err := h.Notes.AddNote(ctx, commands.AddNoteCommand{
		ParentType: entities.NoteParentType(req.ParentType),
		ParentID:   req.ParentID,
		Text:       req.Text,
		Public:     req.Public,
		UserID:     userID,
	})
	if err != nil {
		return httptransport.NoteResponse{}, err
	}
	return noteResponse(note), nil
}

func (h Handler) DeleteNoteHandler(ctx context.Context, noteID string, userID string) error {
	return h.Notes.DeleteNote(ctx, noteID, userID)
}

func (h Handler) ListGameNotesHandler(ctx context.Context, gameID string) (httptransport.NoteListResponse, error) {
	notes, err := h.Catalog.ListNotesForGame(ctx, gameID)
	if err != nil {
		return httptransport.NoteListResponse{}, err
	}
	items := make([]httptransport.NoteResponse, 0, len(notes))
	for _, note := range notes {
		items = append(items, noteResponse(note))
	}
	return httptransport.NoteListResponse{Items: items}, nil
}

func gameResponse(game entities.Game) httptransport.GameResponse {
	return httptransport.GameResponse{
		GameID:        game.GameID,
		Name:          game.Name,
		Slug:          game.Slug,
		Description:   game.Description,
		DurationID:    game.DurationID,
		PlayerCountID: game.PlayerCountID,
		TagIDs:        game.TagIDs,
		AddedUser:     game.AddedUser,
		DateAdded:     game.DateAdded,
	}
}

func metadataResponse(metadata entities.GameMetadata) httptransport.MetadataResponse {
	return httptransport.MetadataResponse{
		MetadataID: metadata.MetadataID,
		Name:       metadata.Name,
		Type:       string(metadata.Type),
		Min:        metadata.Min,
		Max:        metadata.Max,
	}
}

func noteResponse(note entities.Note) httptransport.NoteResponse {
	return httptransport.NoteResponse{
		NoteID:     note.NoteID,
		ParentType: string(note.ParentType),
		ParentID:   note.ParentID,
		Text:       note.Text,
		Public:     note.Public,
		AddedUser:  note.AddedUser,
		DateAdded:  note.DateAdded,
	}
}
