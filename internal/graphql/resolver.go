package graphql

import (
	"context"
	"log/slog"

	"github.com/GoArmGo/UserApp/internal/domain"
	"github.com/GoArmGo/UserApp/internal/usecase"
	"github.com/GoArmGo/UserApp/internal/validation"
	graphqlgo "github.com/graph-gophers/graphql-go"
)

// Resolver - корневой резолвер для Query и Mutation
type Resolver struct {
	userUseCase usecase.UserUseCase
	validator   *validation.Validator
	logger      *slog.Logger
}

type createUserArgs struct {
	Input struct {
		Email     string
		Username  string
		Password  string
		FirstName *string
		LastName  *string
	}
}

type updateUserArgs struct {
	Input struct {
		ID        graphqlgo.ID
		Email     *string
		Username  *string
		Password  *string
		FirstName *string
		LastName  *string
	}
}

type idArgs struct {
	ID graphqlgo.ID
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	users, err := r.userUseCase.FindAll(ctx)
	if err != nil {
		return nil, r.toResolverError(err)
	}

	res := make([]*userResolver, 0, len(users))
	for i := range users {
		res = append(res, &userResolver{user: users[i]})
	}
	return res, nil
}

// User возвращает null для неизвестного id
func (r *Resolver) User(ctx context.Context, args idArgs) (*userResolver, error) {
	user, err := r.userUseCase.FindByID(ctx, string(args.ID))
	if err != nil {
		return nil, r.toResolverError(err)
	}
	if user == nil {
		return nil, nil
	}
	return &userResolver{user: *user}, nil
}

func (r *Resolver) CreateUser(ctx context.Context, args createUserArgs) (*userResolver, error) {
	in := validation.CreateUserInput{
		Email:     args.Input.Email,
		Username:  args.Input.Username,
		Password:  args.Input.Password,
		FirstName: args.Input.FirstName,
		LastName:  args.Input.LastName,
	}
	if err := r.validator.ValidateCreate(in); err != nil {
		return nil, r.toResolverError(err)
	}

	user, err := r.userUseCase.Create(ctx, in.ToNewUser())
	if err != nil {
		return nil, r.toResolverError(err)
	}
	return &userResolver{user: *user}, nil
}

func (r *Resolver) UpdateUser(ctx context.Context, args updateUserArgs) (*userResolver, error) {
	in := validation.UpdateUserInput{
		Email:     args.Input.Email,
		Username:  args.Input.Username,
		Password:  args.Input.Password,
		FirstName: args.Input.FirstName,
		LastName:  args.Input.LastName,
	}
	if err := r.validator.ValidateUpdate(in); err != nil {
		return nil, r.toResolverError(err)
	}

	user, err := r.userUseCase.Update(ctx, string(args.Input.ID), in.ToPatch())
	if err != nil {
		return nil, r.toResolverError(err)
	}
	return &userResolver{user: *user}, nil
}

func (r *Resolver) DeleteUser(ctx context.Context, args idArgs) (bool, error) {
	if err := r.userUseCase.Delete(ctx, string(args.ID)); err != nil {
		return false, r.toResolverError(err)
	}
	return true, nil
}

// userResolver - отображение domain.User на тип User схемы
type userResolver struct {
	user domain.User
}

func (u *userResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(u.user.ID.String())
}

func (u *userResolver) Email() string {
	return u.user.Email
}

func (u *userResolver) Username() string {
	return u.user.Username
}

func (u *userResolver) FirstName() *string {
	return u.user.FirstName
}

func (u *userResolver) LastName() *string {
	return u.user.LastName
}

func (u *userResolver) CreatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: u.user.CreatedAt}
}

func (u *userResolver) UpdatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: u.user.UpdatedAt}
}
