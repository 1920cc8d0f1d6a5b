package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

const (
	collectionTeams       = "teams"
	collectionMemberships = "team_memberships"
	collectionGrants      = "team_grants"
)

var (
	_ ports.TeamRepository  = (*TeamRepository)(nil)
	_ ports.GrantRepository = (*TeamRepository)(nil)
)

// TeamRepository stores teams together with their membership records and
// capability grants.
type TeamRepository struct {
	client      *mongo.Client
	teams       *mongo.Collection
	memberships *mongo.Collection
	grants      *mongo.Collection
}

func NewTeamRepository(db *mongo.Database) *TeamRepository {
	return &TeamRepository{
		client:      db.Client(),
		teams:       db.Collection(collectionTeams),
		memberships: db.Collection(collectionMemberships),
		grants:      db.Collection(collectionGrants),
	}
}

type mongoTeam struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (mt mongoTeam) toDomain() domain.Team {
	return domain.Team{ID: mt.ID.Hex(), Name: mt.Name, CreatedAt: mt.CreatedAt}
}

type mongoMembership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TeamID    primitive.ObjectID `bson:"team_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (mm mongoMembership) toDomain() domain.Membership {
	return domain.Membership{
		TeamID:    mm.TeamID.Hex(),
		UserID:    mm.UserID.Hex(),
		Role:      domain.Role(mm.Role),
		CreatedAt: mm.CreatedAt,
	}
}

type mongoGrant struct {
	TeamID     primitive.ObjectID `bson:"team_id"`
	Group      string             `bson:"group"`
	Role       string             `bson:"role"`
	Capability string             `bson:"capability"`
}

// CreateTeam inserts the team, the owner membership and the grants in one
// transaction.
func (r *TeamRepository) CreateTeam(ctx context.Context, team *domain.Team, owner domain.Membership, grants []domain.Grant) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ownerID, err := primitive.ObjectIDFromHex(owner.UserID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	teamID := primitive.NewObjectID()
	teamDoc := mongoTeam{ID: teamID, Name: team.Name, CreatedAt: team.CreatedAt.UTC()}
	ownerDoc := mongoMembership{
		TeamID:    teamID,
		UserID:    ownerID,
		Role:      string(owner.Role),
		CreatedAt: owner.CreatedAt.UTC(),
	}
	grantDocs := make([]interface{}, 0, len(grants))
	for _, g := range grants {
		grantDocs = append(grantDocs, mongoGrant{
			TeamID:     teamID,
			Group:      g.Group,
			Role:       string(g.Role),
			Capability: string(g.Capability),
		})
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.teams.InsertOne(sc, teamDoc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrTeamExists
			}
			return nil, fmt.Errorf("insert team: %w", err)
		}
		if _, err := r.memberships.InsertOne(sc, ownerDoc); err != nil {
			return nil, fmt.Errorf("insert owner membership: %w", err)
		}
		if len(grantDocs) > 0 {
			if _, err := r.grants.InsertMany(sc, grantDocs); err != nil {
				return nil, fmt.Errorf("insert grants: %w", err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	team.ID = teamID.Hex()
	for i := range grants {
		grants[i].TeamID = team.ID
	}
	return nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id string) (*domain.Team, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTeamNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoTeam
	if err := r.teams.FindOne(ctx, bson.M{"_id": oid}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, fmt.Errorf("find team: %w", err)
	}

	t := mt.toDomain()
	return &t, nil
}

// Search matches a literal substring of the team name, ignoring case.
func (r *TeamRepository) Search(ctx context.Context, term string) ([]domain.Team, error) {
	filter := bson.M{}
	if term != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	}
	return r.findTeams(ctx, filter, "search teams")
}

func (r *TeamRepository) ListForUser(ctx context.Context, userID string) ([]domain.Team, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []domain.Team{}, nil
	}

	docs, err := r.findMemberships(ctx, bson.M{"user_id": uid})
	if err != nil {
		return nil, fmt.Errorf("list teams for user: %w", err)
	}
	if len(docs) == 0 {
		return []domain.Team{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.TeamID)
	}
	return r.findTeams(ctx, bson.M{"_id": bson.M{"$in": ids}}, "list teams for user")
}

func (r *TeamRepository) findTeams(ctx context.Context, filter bson.M, op string) ([]domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.teams.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var docs []mongoTeam
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	teams := make([]domain.Team, 0, len(docs))
	for _, d := range docs {
		teams = append(teams, d.toDomain())
	}
	return teams, nil
}

func (r *TeamRepository) ListMemberships(ctx context.Context, teamID string) ([]domain.Membership, error) {
	tid, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return nil, domain.ErrTeamNotFound
	}

	docs, err := r.findMemberships(ctx, bson.M{"team_id": tid})
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	out := make([]domain.Membership, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *TeamRepository) findMemberships(ctx context.Context, filter bson.M) ([]mongoMembership, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.memberships.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []mongoMembership
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *TeamRepository) FindMembership(ctx context.Context, teamID, userID string) (*domain.Membership, error) {
	filter, ok := membershipFilter(teamID, userID)
	if !ok {
		return nil, domain.ErrMembershipNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mm mongoMembership
	if err := r.memberships.FindOne(ctx, filter).Decode(&mm); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}

	m := mm.toDomain()
	return &m, nil
}

// AddMember upserts a member record. $setOnInsert keeps an existing admin
// from being downgraded.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID string) error {
	filter, ok := membershipFilter(teamID, userID)
	if !ok {
		return domain.ErrMembershipNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$setOnInsert": bson.M{
		"role":       string(domain.RoleMember),
		"created_at": time.Now().UTC(),
	}}
	_, err := r.memberships.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (r *TeamRepository) SetRole(ctx context.Context, teamID, userID string, role domain.Role) error {
	filter, ok := membershipFilter(teamID, userID)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.memberships.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"role": string(role)}}); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	filter, ok := membershipFilter(teamID, userID)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.memberships.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (r *TeamRepository) CountAdmins(ctx context.Context, teamID string) (int64, error) {
	tid, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.memberships.CountDocuments(ctx, bson.M{"team_id": tid, "role": string(domain.RoleAdmin)})
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func (r *TeamRepository) ListGrants(ctx context.Context, teamID string) ([]domain.Grant, error) {
	tid, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return []domain.Grant{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.grants.Find(ctx, bson.M{"team_id": tid})
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoGrant
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}

	grants := make([]domain.Grant, 0, len(docs))
	for _, d := range docs {
		grants = append(grants, domain.Grant{
			TeamID:     d.TeamID.Hex(),
			Group:      d.Group,
			Role:       domain.Role(d.Role),
			Capability: domain.Capability(d.Capability),
		})
	}
	return grants, nil
}

// EnsureIndexes creates the unique team name index and the membership
// indexes. A user holds at most one membership record per team.
func (r *TeamRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.teams.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("teams indexes: %w", err)
	}

	if _, err := r.memberships.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "team_id", Value: 1}, {Key: "role", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("membership indexes: %w", err)
	}

	if _, err := r.grants.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "team_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("grant indexes: %w", err)
	}
	return nil
}

func membershipFilter(teamID, userID string) (bson.M, bool) {
	tid, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return nil, false
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false
	}
	return bson.M{"team_id": tid, "user_id": uid}, true
}
